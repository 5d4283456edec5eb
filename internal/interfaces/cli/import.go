package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// datasetStore is the PostgreSQL side of an import.
type datasetStore interface {
	dataset.Locator
	Import(ctx context.Context, source string, snap *dataset.Snapshot) (*repositories.ImportRecord, error)
	ListImports(ctx context.Context, limit int) ([]*repositories.ImportRecord, error)
}

// objectStore is the MinIO side of an import. It also serves the uploaded
// files, which identifies the cache entries to drop.
type objectStore interface {
	dataset.Opener
	Put(ctx context.Context, name string, r io.Reader, size int64) (*minio.ObjectInfo, error)
}

// importer opens the import targets. Tests replace the open functions.
type importer struct {
	openDatasets func(b *backend) (datasetStore, error)
	openObjects  func(b *backend) (objectStore, error)
}

func defaultImporter() *importer {
	return &importer{
		openDatasets: func(b *backend) (datasetStore, error) {
			conn, err := b.openDatabase()
			if err != nil {
				return nil, err
			}
			return repositories.NewDatasetRepository(conn, b.logger), nil
		},
		openObjects: func(b *backend) (objectStore, error) {
			client, err := b.openObjectStore()
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

type importOptions struct {
	from  string
	to    string
	limit int
}

func newImportCmd() *cobra.Command {
	return newImportCmdWith(defaultImporter())
}

func newImportCmdWith(imp *importer) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy datasets into PostgreSQL or MinIO",
		Long: "With --to postgres (the default) the datasets are read from --from, parsed and\n" +
			"replace the contents of the dataset tables in one transaction. With --to minio\n" +
			"the dataset files under dataset.dir are uploaded unchanged to minio.bucket.\n" +
			"Cached copies of the target's datasets are dropped afterwards.",
		Example: `  coalition migrate up && coalition import
  coalition import --to minio
  coalition import list --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return imp.run(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", SourceFile, "dataset source to read (file, minio)")
	cmd.Flags().StringVar(&opts.to, "to", SourcePostgres, "import target (postgres, minio)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent PostgreSQL imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return imp.list(cmd, opts.limit)
		},
	}
	list.Flags().IntVar(&opts.limit, "limit", 10, "number of imports to list")
	cmd.AddCommand(list)

	return cmd
}

func (imp *importer) run(cmd *cobra.Command, opts *importOptions) error {
	cliCtx, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	if opts.from == opts.to {
		return errors.InvalidParam("--from and --to name the same backend: " + opts.from)
	}

	b := newBackend(cliCtx.Config, cliCtx.Logger.Named("import"))
	defer b.Close()

	switch opts.to {
	case SourcePostgres:
		err = imp.toPostgres(cmd, b, opts.from)
	case SourceMinIO:
		if opts.from != SourceFile {
			return errors.InvalidParam("--to minio uploads dataset files and needs --from file")
		}
		err = imp.toMinIO(cmd, b)
	default:
		return errors.InvalidParam("unsupported import target: " + opts.to)
	}
	if err != nil {
		b.recordError("import", err)
	}
	return err
}

func (imp *importer) toPostgres(cmd *cobra.Command, b *backend, from string) error {
	ctx := cmd.Context()
	if from == SourcePostgres {
		return errors.InvalidParam("cannot import from postgres into postgres")
	}
	src, err := b.rawSource(from)
	if err != nil {
		return err
	}

	start := time.Now()
	snap, err := dataset.Load(ctx, src, b.logger)
	if b.metrics != nil {
		b.metrics.RecordDatasetLoad(src.Name(), time.Since(start), err)
	}
	if err != nil {
		return err
	}

	store, err := imp.openDatasets(b)
	if err != nil {
		return err
	}
	start = time.Now()
	rec, err := store.Import(ctx, src.Name(), snap)
	if b.metrics != nil {
		b.metrics.RecordDBQuery("import", time.Since(start), err)
	}
	if err != nil {
		return err
	}

	if b.metrics != nil {
		b.metrics.RecordImport(SourcePostgres, dataset.KindCabinets, len(snap.Cabinets))
		b.metrics.RecordImport(SourcePostgres, dataset.KindLowerChamber, lowerRows(snap.LowerChamber))
		b.metrics.RecordImport(SourcePostgres, dataset.KindUpperChamber, upperRows(snap.UpperChamber))
		b.metrics.RecordImport(SourcePostgres, dataset.KindTopics, len(snap.Topics))
	}
	b.invalidate(ctx, store)

	return PrintResult(cmd, importsView{rec})
}

func (imp *importer) toMinIO(cmd *cobra.Command, b *backend) error {
	ctx := cmd.Context()
	store, err := imp.openObjects(b)
	if err != nil {
		return err
	}

	files := b.files()
	names := append(append(append([]string{}, files.Cabinets...), files.LowerChamber...), files.UpperChamber...)
	var uploaded uploadsView
	for _, name := range names {
		obj, err := uploadFile(ctx, store, b.cfg.Dataset.Dir, name)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, obj)
	}
	if files.TopicVectors != "" {
		obj, err := uploadFile(ctx, store, b.cfg.Dataset.Dir, files.TopicVectors)
		switch {
		case errors.IsNotFound(err):
			b.logger.Warn("topic vectors not found, skipped", logging.String("file", files.TopicVectors))
		case err != nil:
			return err
		default:
			uploaded = append(uploaded, obj)
		}
	}

	b.invalidate(ctx, dataset.NewObjectSource(store, files, b.logger))
	b.logger.Info("dataset files uploaded", logging.Int("objects", len(uploaded)))
	return PrintResult(cmd, uploaded)
}

// uploadFile stores dir/name under the object key name. A missing file is
// reported as CodeNotFound.
func uploadFile(ctx context.Context, store objectStore, dir, name string) (uploadedObject, error) {
	path := filepath.Join(dir, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return uploadedObject{}, errors.NotFound("dataset file not found").WithDetail(path)
		}
		return uploadedObject{}, errors.Wrap(err, errors.CodeDatasetRead, "failed to open dataset file").WithDetail(path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return uploadedObject{}, errors.Wrap(err, errors.CodeDatasetRead, "failed to stat dataset file").WithDetail(path)
	}
	obj, err := store.Put(ctx, name, f, info.Size())
	if err != nil {
		return uploadedObject{}, err
	}
	return uploadedObject{Name: obj.Name, Size: obj.Size}, nil
}

func (imp *importer) list(cmd *cobra.Command, limit int) error {
	cliCtx, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	b := newBackend(cliCtx.Config, cliCtx.Logger)
	defer b.Close()

	store, err := imp.openDatasets(b)
	if err != nil {
		return err
	}
	records, err := store.ListImports(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return PrintResult(cmd, importsView(records))
}

func lowerRows(table map[int]coalition.SeatDistribution) int {
	n := 0
	for _, d := range table {
		n += len(d)
	}
	return n
}

func upperRows(table coalition.ChamberSeatTable) int {
	n := 0
	for _, seats := range table {
		n += len(seats)
	}
	return n
}

//Personal.AI order the ending
