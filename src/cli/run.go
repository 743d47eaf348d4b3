package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"ptero-backup/src/config"
	"ptero-backup/src/dockerapi"
	"ptero-backup/src/jobs"
	"ptero-backup/src/logging"
	"ptero-backup/src/pbs"
	"ptero-backup/src/scheduler"
)

type options struct {
	configPath    string
	logLevel      string
	backup        bool
	restore       bool
	list          bool
	serverID      string
	snapshot      string
	forceShutdown bool
}

func (o options) validate() error {
	modes := 0
	for _, on := range []bool{o.backup, o.restore, o.list} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("--backup, --restore, and --list-snapshots are mutually exclusive")
	}
	if (o.backup || o.restore || o.list) && o.serverID == "" {
		return errors.New("--server-id is required for this operation")
	}
	if o.restore && o.snapshot == "" {
		return errors.New("--snapshot is required for a restore")
	}
	return nil
}

func run(ctx context.Context, stdout io.Writer, opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	bin, err := pbs.Detect(ctx)
	if err != nil {
		return err
	}
	logger.Debug("backup client detected",
		zap.String("path", bin.Path),
		zap.String("version", bin.Version))
	store := pbs.NewClient(bin, cfg.Settings.Repository, cfg.Settings.Namespace, cfg.Settings.Key)

	runtime, err := dockerapi.Connect()
	if err != nil {
		return err
	}
	defer runtime.Close()

	runner := jobs.NewRunner(cfg.Settings, runtime, store, logger)

	switch {
	case opts.list:
		refs, rec := runner.ListSnapshots(ctx, opts.serverID)
		if rec.Err != nil {
			return rec.Err
		}
		if len(refs) == 0 {
			fmt.Fprintln(stdout, "No snapshots found")
			return nil
		}
		return renderSnapshots(stdout, refs)

	case opts.backup:
		// Unknown ids still get a minimal profile; ad-hoc backups of
		// unconfigured servers are allowed.
		profile, ok := cfg.Profile(opts.serverID)
		if !ok {
			profile = config.ServerProfile{ID: opts.serverID, Name: opts.serverID}
		}
		return jobError(runner.Backup(ctx, profile, opts.forceShutdown))

	case opts.restore:
		return jobError(runner.Restore(ctx, opts.serverID, opts.snapshot))

	default:
		return runScheduler(ctx, cfg, runner, logger)
	}
}

func runScheduler(ctx context.Context, cfg *config.Config, runner *jobs.Runner, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(runner, logger, time.Local)
	for _, profile := range cfg.Servers {
		if err := sched.Register(profile); err != nil {
			logger.Error("server excluded from scheduling", zap.Error(err))
		}
	}
	if sched.Registered() == 0 {
		return errors.New("no servers with a valid schedule")
	}
	sched.Run(ctx)
	return nil
}

// jobError converts a job record into the CLI's exit contract: nil on
// success, an error otherwise so Execute returns a nonzero code.
func jobError(rec jobs.JobRecord) error {
	switch rec.Outcome {
	case jobs.OutcomeSuccess:
		return nil
	case jobs.OutcomeSkipped:
		return fmt.Errorf("another job is already running for server %s", rec.ServerID)
	default:
		return rec.Err
	}
}

func renderSnapshots(w io.Writer, refs []pbs.SnapshotRef) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SNAPSHOT\tTIME")
	for _, ref := range refs {
		fmt.Fprintf(tw, "%s\t%s\n", ref.Name, ref.Time.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
