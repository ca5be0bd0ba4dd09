package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/api"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/config"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/downloader"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/history"
	chttp "github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/http"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/progress"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitCancelled    = 3
)

// cancelFailsafe is how long the CLI waits after a cancellation
// request before warning that the worker has not stopped yet.
const cancelFailsafe = 3 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("chronicle", flag.ExitOnError)

	configPath := fs.String("config", "Chronicle_Android_bulk_data_downloader_config.json", "Settings file (JSON or YAML)")
	folder := fs.String("folder", "", "Download folder")
	study := fs.String("study", "", "Chronicle study ID")
	token := fs.String("token", "", "Temporary authorization token (or CHRONICLE_TOKEN)")
	filterList := fs.String("filter", "", "Comma-separated participant ID matchers")
	inclusive := fs.Bool("inclusive", false, "Treat the filter list as inclusive instead of exclusive")

	raw := fs.Bool("raw", false, "Download raw data")
	preprocessed := fs.Bool("preprocessed", false, "Download preprocessed data")
	survey := fs.Bool("survey", false, "Download survey data")
	iosSensor := fs.Bool("ios-sensor", false, "Download iOS sensor data")
	diaryDaytime := fs.Bool("diary-daytime", false, "Download time use diary daytime data")
	diaryNighttime := fs.Bool("diary-nighttime", false, "Download time use diary nighttime data")
	diarySummarized := fs.Bool("diary-summarized", false, "Download time use diary summarized data")

	deleteZeroByte := fs.Bool("delete-zero-byte", false, "Delete zero-byte .csv files after organizing")
	baseURL := fs.String("base-url", "", "Chronicle API base URL (default production)")
	listen := fs.String("listen", "", "Optional address for the status API, e.g. :8080")
	historyPath := fs.String("history", "", "Optional SQLite file recording downloads")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: chronicle [options]

Download Chronicle study data in bulk, then archive and organize the
download folder. Settings persist in the -config file between runs;
command-line flags override it.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	cfg.LoadFromEnv()

	// Flags set on the command line override the settings file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "folder":
			cfg.DownloadFolder = *folder
		case "study":
			cfg.StudyID = *study
		case "filter":
			cfg.ParticipantIDsToFilter = *filterList
		case "inclusive":
			cfg.InclusiveChecked = *inclusive
		case "raw":
			cfg.RawChecked = *raw
		case "preprocessed":
			cfg.PreprocessedChecked = *preprocessed
		case "survey":
			cfg.SurveyChecked = *survey
		case "ios-sensor":
			cfg.IOSSensorChecked = *iosSensor
		case "diary-daytime":
			cfg.DiaryDaytimeChecked = *diaryDaytime
		case "diary-nighttime":
			cfg.DiaryNighttimeChecked = *diaryNighttime
		case "diary-summarized":
			cfg.DiarySummarizedChecked = *diarySummarized
		case "delete-zero-byte":
			cfg.DeleteZeroByteChecked = *deleteZeroByte
		}
	})

	bearer := *token
	if bearer == "" {
		bearer = os.Getenv("CHRONICLE_TOKEN")
	}
	if bearer == "" {
		fmt.Fprintln(os.Stderr, "Error: -token or CHRONICLE_TOKEN is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	opts := downloader.Options{
		BaseURL: *baseURL,
		Logf: func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, "[chronicle] "+format+"\n", a...)
		},
	}

	if *historyPath != "" {
		repo, err := history.NewSQLiteRepository(*historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		defer repo.Close()
		opts.History = repo
	}

	var events *progress.Broadcaster
	if *listen != "" {
		events = progress.NewBroadcaster()
		opts.Events = events
	}

	o := downloader.New(opts)

	if *listen != "" {
		server := api.NewServer(o, opts.History, events)
		go func() {
			fmt.Fprintf(os.Stderr, "[chronicle] Status API listening on %s\n", *listen)
			if err := http.ListenAndServe(*listen, server.Router()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: status API: %v\n", err)
			}
		}()
	}

	params := downloader.Params{
		DownloadFolder: cfg.DownloadFolder,
		StudyID:        cfg.StudyID,
		Token:          bearer,
		DataTypes:      cfg.DataTypes(),
		FilterMode:     cfg.FilterMode(),
		FilterList:     cfg.FilterList(),
		DeleteZeroByte: cfg.DeleteZeroByteChecked,
	}

	sink := &consoleSink{
		done:    make(chan int, 1),
		settled: make(chan struct{}),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[chronicle] Received interrupt, cancelling after the current request...")
		o.Cancel()

		select {
		case <-time.After(cancelFailsafe):
			fmt.Fprintln(os.Stderr, "[chronicle] Still waiting on an in-flight request; it will finish on its own")
		case <-sink.settled:
		}

		<-sigCh
		fmt.Fprintln(os.Stderr, "[chronicle] Second interrupt, exiting immediately")
		os.Exit(ExitCancelled)
	}()

	go o.Run(context.Background(), params, sink)

	code := <-sink.done
	if code == ExitSuccess {
		if err := cfg.SaveToFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "[chronicle] Could not save settings: %v\n", err)
		}
	}
	return code
}

// consoleSink renders run notifications on stderr.
type consoleSink struct {
	done    chan int
	settled chan struct{}
}

func (s *consoleSink) Progress(percent int, text string) {
	if text == "" {
		fmt.Fprintf(os.Stderr, "\r[chronicle] %3d%%", percent)
		return
	}
	fmt.Fprintf(os.Stderr, "\r[chronicle] %3d%% %s", percent, text)
}

func (s *consoleSink) Error(err error) {
	fmt.Fprintln(os.Stderr)

	var statusErr *chttp.StatusError
	var validationErr *downloader.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintf(os.Stderr, "Error: %s\n", validationErr.Reason)
	case errors.As(err, &statusErr):
		fmt.Fprintf(os.Stderr, "Error: an HTTP error occurred while attempting to download the data: %d %s. Please ensure that the study and data type you chose correspond.\n",
			statusErr.Code, chttp.StatusDescription(statusErr.Code))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	close(s.settled)
	s.done <- ExitGeneralError
}

func (s *consoleSink) Completed() {
	fmt.Fprintln(os.Stderr, "\n[chronicle] Download complete")
	close(s.settled)
	s.done <- ExitSuccess
}

func (s *consoleSink) Cancelled() {
	fmt.Fprintln(os.Stderr, "\n[chronicle] Download cancelled")
	close(s.settled)
	s.done <- ExitCancelled
}
