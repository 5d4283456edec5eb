package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

var fixtureFiles = Files{
	Cabinets:     []string{"cabinets/kabinetten.csv"},
	LowerChamber: []string{"tk_old.csv", "tk_new.csv"},
	UpperChamber: []string{"ek.csv"},
	TopicVectors: "topic_vectors.json",
}

func fixtureDir(t *testing.T) string {
	return writeFiles(t, map[string]string{
		"cabinets/kabinetten.csv": "Kabinet,Partijen\nDrees II,\"KVP, PvdA\"\nRutte III,\"VVD, CDA, D66, CU\"\n",
		"tk_old.csv":              "Jaar,KVP,PvdA\n1952,30,30\n",
		"tk_new.csv":              "Jaar,VVD,PVV,KVP\n2023,24,37,\n",
		"ek.csv":                  "Jaar,Partij,Zetels\n2023,VVD,10\n2023,BBB,16\n",
		"topic_vectors.json":      `{"VVD":[1,0],"PVV":[0,1]}`,
	})
}

func TestFileSource(t *testing.T) {
	src := NewFileSource(fixtureDir(t), fixtureFiles, logging.NewNopLogger())
	ctx := context.Background()

	assert.Equal(t, "file", src.Name())

	cabinets, err := src.Cabinets(ctx)
	require.NoError(t, err)
	assert.Len(t, cabinets, 2)

	lower, err := src.LowerChamber(ctx)
	require.NoError(t, err)
	assert.Equal(t, coalition.SeatDistribution{{Party: "VVD", Seats: 24}, {Party: "PVV", Seats: 37}}, lower[2023])
	assert.Equal(t, 30, lower[1952].Seats("PvdA"))

	upper, err := src.UpperChamber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, upper[2023]["BBB"])

	topics, err := src.TopicVectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, topics["PVV"])
}

func TestLoad(t *testing.T) {
	src := NewFileSource(fixtureDir(t), fixtureFiles, logging.NewNopLogger())

	snap, err := Load(context.Background(), src, logging.NewNopLogger())

	require.NoError(t, err)
	assert.Len(t, snap.Cabinets, 2)
	assert.Len(t, snap.LowerChamber, 2)
	assert.Contains(t, snap.UpperChamber, 2023)
	assert.Len(t, snap.Topics, 2)
}

func TestLoad_TopicFailureIsNotFatal(t *testing.T) {
	files := fixtureFiles
	files.TopicVectors = "missing.json"
	src := NewFileSource(fixtureDir(t), files, logging.NewNopLogger())

	snap, err := Load(context.Background(), src, logging.NewNopLogger())

	require.NoError(t, err)
	assert.Nil(t, snap.Topics)
}

func TestLoad_MissingFileFails(t *testing.T) {
	files := fixtureFiles
	files.UpperChamber = []string{"nope.csv"}
	src := NewFileSource(fixtureDir(t), files, logging.NewNopLogger())

	_, err := Load(context.Background(), src, logging.NewNopLogger())

	assert.True(t, errors.IsNotFound(err))
}

func TestTableSource_Unconfigured(t *testing.T) {
	src := NewFileSource(t.TempDir(), Files{}, nil)
	ctx := context.Background()

	_, err := src.Cabinets(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
	_, err = src.LowerChamber(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))

	topics, err := src.TopicVectors(ctx)
	assert.NoError(t, err)
	assert.Nil(t, topics)
}

func TestDirOpener_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DirOpener(t.TempDir()).Open(ctx, "x.csv")
	assert.True(t, errors.IsCode(err, errors.CodeCanceled))
}

type memOpener map[string]string

func (m memOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := m[name]
	if !ok {
		return nil, errors.NotFound("object not found").WithDetail(name)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m memOpener) Location() string { return "memory" }

func TestObjectSource(t *testing.T) {
	store := memOpener{
		"cabinets.csv": "Partijen\n\"VVD, PVV\"\n",
		"tk.csv":       "Jaar,VVD\n2023,24\n",
		"ek.csv":       "Jaar,VVD\n2023,10\n",
	}
	src := NewObjectSource(store, Files{
		Cabinets:     []string{"cabinets.csv"},
		LowerChamber: []string{"tk.csv"},
		UpperChamber: []string{"ek.csv"},
	}, logging.NewNopLogger())

	snap, err := Load(context.Background(), src, logging.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, "minio", src.Name())
	assert.Equal(t, "memory?cabinets=cabinets.csv;lower=tk.csv;upper=ek.csv;topics=", src.Location())
	assert.Equal(t, [][]coalition.PartyID{{"VVD", "PVV"}}, snap.Cabinets)
	assert.Equal(t, 10, snap.UpperChamber[2023]["VVD"])
	assert.Nil(t, snap.Topics)
}
