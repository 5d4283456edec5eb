package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Opener opens a named dataset file.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Location names the directory or bucket the files are opened from.
	Location() string
}

// DirOpener opens files below a local directory.
type DirOpener string

// Location implements Opener. Relative directories are resolved against the
// working directory.
func (d DirOpener) Location() string {
	abs, err := filepath.Abs(string(d))
	if err != nil {
		return string(d)
	}
	return abs
}

// Open implements Opener.
func (d DirOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "open dataset")
	}
	path := filepath.Join(string(d), filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "dataset file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.CodeDatasetRead, "open dataset file").WithDetail(path)
	}
	return f, nil
}

// TableSource parses the CSV and JSON dataset files served by an Opener.
type TableSource struct {
	name   string
	opener Opener
	files  Files
	logger logging.Logger
}

// NewTableSource returns a Source that reads files through opener.
func NewTableSource(name string, opener Opener, files Files, logger logging.Logger) *TableSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TableSource{name: name, opener: opener, files: files, logger: logger.Named("dataset." + name)}
}

// NewFileSource reads the datasets from a local directory.
func NewFileSource(dir string, files Files, logger logging.Logger) *TableSource {
	return NewTableSource("file", DirOpener(dir), files, logger)
}

// Name implements Source.
func (s *TableSource) Name() string { return s.name }

// Location implements Source.
func (s *TableSource) Location() string {
	return s.opener.Location() + "?" + s.files.String()
}

func (s *TableSource) read(ctx context.Context, name string, parse func(io.Reader) error) error {
	rc, err := s.opener.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := parse(rc); err != nil {
		return err
	}
	s.logger.Debug("dataset file parsed", logging.String("file", name))
	return nil
}

// Cabinets implements Source. Cabinets from several files are concatenated.
func (s *TableSource) Cabinets(ctx context.Context) ([][]coalition.PartyID, error) {
	if len(s.files.Cabinets) == 0 {
		return nil, errors.New(errors.CodeInvalidConfig, "no cabinet dataset configured")
	}
	var out [][]coalition.PartyID
	for _, name := range s.files.Cabinets {
		err := s.read(ctx, name, func(r io.Reader) error {
			cabinets, err := ParseCabinets(r, name)
			out = append(out, cabinets...)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *TableSource) tables(ctx context.Context, names []string, kind string) ([]*seatTable, error) {
	if len(names) == 0 {
		return nil, errors.Newf(errors.CodeInvalidConfig, "no %s dataset configured", kind)
	}
	tables := make([]*seatTable, 0, len(names))
	for _, name := range names {
		err := s.read(ctx, name, func(r io.Reader) error {
			t, err := parseSeatTable(r, name)
			if err == nil {
				tables = append(tables, t)
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// LowerChamber implements Source.
func (s *TableSource) LowerChamber(ctx context.Context) (map[int]coalition.SeatDistribution, error) {
	tables, err := s.tables(ctx, s.files.LowerChamber, "lower-chamber")
	if err != nil {
		return nil, err
	}
	return buildLowerChamber(tables), nil
}

// UpperChamber implements Source.
func (s *TableSource) UpperChamber(ctx context.Context) (coalition.ChamberSeatTable, error) {
	tables, err := s.tables(ctx, s.files.UpperChamber, "upper-chamber")
	if err != nil {
		return nil, err
	}
	return buildUpperChamber(tables), nil
}

// TopicVectors implements Source. It returns nil when no file is configured.
func (s *TableSource) TopicVectors(ctx context.Context) (coalition.TopicVectors, error) {
	if s.files.TopicVectors == "" {
		return nil, nil
	}
	var out coalition.TopicVectors
	err := s.read(ctx, s.files.TopicVectors, func(r io.Reader) error {
		var err error
		out, err = ParseTopicVectors(r, s.files.TopicVectors)
		return err
	})
	return out, err
}

// NewObjectSource reads the datasets from object storage. The MinIO client
// satisfies Opener.
func NewObjectSource(store Opener, files Files, logger logging.Logger) *TableSource {
	return NewTableSource("minio", store, files, logger)
}
