package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"fillfs/internal/config"
	"fillfs/internal/fill"
	"fillfs/internal/logging"
	"fillfs/internal/reporting"
	"fillfs/internal/system"
)

const Version = "1.0.0"

var (
	randomFlag  bool
	zeroFlag    bool
	statusFlag  bool
	verboseFlag bool
	blockSize   string
	configPath  string
	reportPath  string
)

var rootCmd = &cobra.Command{
	Use:     "fillfs [flags] <path> [size]",
	Short:   "Fill a filesystem or overwrite a file with zeros or random data",
	Version: Version,
	Long: `fillfs writes a stream of bytes to a target until a size is reached or
the device runs out of space.

Arguments:
  <path>   Either:
     - a directory: create <dir>/.fillfs and fill it, removing it on exit.
     - an existing file: overwrite up to [size] or to its own size,
       never deleted, never grown.

  [size]   Optional. If omitted, fill until the disk is full (directory
           case) or overwrite the entire existing file (file case).
           Supports suffixes: K, M, G, T, P, E, Z, Y (powers of 1024).

Examples:
  fillfs --status /mnt/data 1G
  fillfs /mnt/data
  fillfs -r -s /mnt/data 1G
  fillfs --block-size=32M /mnt/data 2G
  fillfs /tmp/existing_file
  fillfs /tmp/existing_file 500M`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFill,
}

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Show free space of the filesystem containing path",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.Flags().BoolVarP(&randomFlag, "random", "r", false, "Write random data")
	rootCmd.Flags().BoolVarP(&zeroFlag, "zero", "z", false, "Write zero data (overrides --random if both set)")
	rootCmd.Flags().BoolVarP(&statusFlag, "status", "s", false, "Show progress (throughput, ETA, etc.)")
	rootCmd.Flags().StringVarP(&blockSize, "block-size", "b", "", "Write block size (default 32M)")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON run report to this file")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(infoCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.File, verboseFlag)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer logger.Close()

	// --zero wins when both content flags are given.
	mode := fill.ModeZero
	if randomFlag && !zeroFlag {
		mode = fill.ModeRandom
	}

	var sizeToken string
	if len(args) == 2 {
		sizeToken = args[1]
	}
	blockToken := blockSize
	if blockToken == "" {
		blockToken = cfg.Fill.BlockSize
	}

	fsys := afero.NewOsFs()
	resolver := &fill.Resolver{Fs: fsys, FreeSpace: system.FreeSpace}
	job, err := resolver.Resolve(args[0], sizeToken, blockToken, mode)
	if err != nil {
		return err
	}

	// Arguments are valid past this point; a runtime failure gets a
	// diagnostic, not the usage text.
	cmd.SilenceUsage = true

	guard := fill.NewGuard(fsys, logger)
	if !job.Preserve {
		guard.Register(job.Path)
	}
	defer guard.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The signal path removes the sentinel and exits immediately; a
	// write or flush in flight is not waited for.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nCaught signal %s. Cleaning up...\n", sig)
		guard.Remove()
		os.Exit(1)
	}()

	logger.Log("INFO", "Starting fill",
		"target", job.Path, "preserve", job.Preserve,
		"mode", mode.String(), "block_bytes", job.BlockBytes)

	loop := fill.NewLoop(job, fsys, logger)
	loop.FlushInterval = cfg.FlushInterval()
	loop.IdlePriority = cfg.Fill.IdlePriority

	var result *fill.Result
	var runErr error

	if statusFlag {
		// Writer on a goroutine, the shell polls the estimator. The
		// estimator limits itself to one line per second.
		est := fill.NewEstimator(job)
		done := make(chan struct{})
		go func() {
			result, runErr = loop.Run(ctx)
			close(done)
		}()

		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
	poll:
		for {
			select {
			case <-done:
				break poll
			case <-ticker.C:
				if snap, ok := est.Sample(job.Written()); ok {
					fmt.Printf("\r%s ", snap.StatusLine())
				}
			}
		}
	} else {
		result, runErr = loop.Run(ctx)
	}

	exitCode := 0
	if runErr != nil {
		exitCode = 1
	}

	if statusFlag && runErr == nil {
		fmt.Printf("\rProgress: 100.00%% (finalizing)\n")
		if result.Status == fill.StatusDiskFull {
			fmt.Println("Disk is full; fill considered complete.")
		}

		elapsed := time.Since(startTime).Seconds()
		totalMB := float64(result.BytesWritten) / (1024 * 1024)
		avg := 0.0
		if elapsed > 0 {
			avg = totalMB / elapsed
		}
		fmt.Printf("Fill/Overwrite complete.\n")
		fmt.Printf("Wrote: %.2f MB in %.2f seconds (avg throughput: %.2f MB/s)\n",
			totalMB, elapsed, avg)
	}

	savePath := reportPath
	if savePath == "" && cfg.Reporting.Enabled {
		savePath = filepath.Join(cfg.Reporting.LocalPath,
			fmt.Sprintf("fillfs_report_%s.json", startTime.Format("20060102_150405")))
	}
	if savePath != "" && result != nil {
		rep := reporting.Generate(job, result, Version, startTime, exitCode)
		if err := reporting.Save(rep, savePath); err != nil {
			logger.Log("WARN", "Cannot save run report", "error", err.Error())
		} else {
			logger.Log("INFO", "Run report saved", "run_id", rep.RunID, "file", savePath)
		}
	}

	return runErr
}

func runInfo(cmd *cobra.Command, args []string) error {
	free, total, err := system.DiskSpace(args[0])
	if err != nil {
		return fmt.Errorf("cannot stat filesystem %s: %w", args[0], err)
	}

	fmt.Printf("%s: %s free of %s\n", args[0], humanize.IBytes(free), humanize.IBytes(total))
	return nil
}

func main() {
	// Usage and help belong on stderr; stdout carries only status lines.
	rootCmd.SetOut(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
