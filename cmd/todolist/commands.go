package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"todolist/internal/config"
	"todolist/internal/logging"
	"todolist/internal/storage"
	"todolist/internal/todo"
	"todolist/internal/ui"
	"todolist/internal/view"
)

type session struct {
	cfg         config.Config
	configPath  string
	firstLaunch bool
	logger      *log.Logger
	kv          storage.KV
	store       *todo.Store
	closers     []io.Closer
}

// openSession loads config, logging and the task store. Interactive runs
// log to the configured file; subcommands log warnings to stderr.
func openSession(c *cli.Context, interactive bool) (*session, error) {
	configPath := c.String("config")
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if c.Bool("ephemeral") {
		cfg.Storage.Backend = storage.BackendMemory
	}

	s := &session{cfg: cfg, configPath: configPath, firstLaunch: firstLaunch}
	opts := logging.Options{
		Level:           logging.ParseLevel(cfg.Log.Level),
		Formatter:       logging.ParseFormat(cfg.Log.Format),
		ReportTimestamp: true,
	}
	if interactive {
		logger, closer, err := logging.OpenFile(cfg.Log.Path, opts)
		if err != nil {
			return nil, err
		}
		s.logger = logger
		s.closers = append(s.closers, closer)
	} else {
		opts.ReportTimestamp = false
		if opts.Level < log.WarnLevel {
			opts.Level = log.WarnLevel
		}
		s.logger = logging.New(c.App.ErrWriter, opts)
	}

	kv, err := storage.Open(storage.Options{
		Backend: cfg.Storage.Backend,
		DBPath:  cfg.Storage.DBPath,
		Dir:     cfg.Storage.Dir,
	})
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "failed to open storage")
	}
	s.kv = kv
	s.closers = append(s.closers, kv)

	store, err := todo.Load(kv, cfg.Storage.Key, todo.WithLogger(s.logger))
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "failed to load tasks")
	}
	s.store = store
	s.logger.Debug("session opened", "config", configPath, "backend", cfg.Storage.Backend, "tasks", store.Len())
	return s, nil
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && s.logger != nil {
			s.logger.Warn("close failed", "err", err)
		}
	}
	s.closers = nil
}

func runTUI(c *cli.Context) error {
	if c.Args().Present() {
		return cli.Exit(fmt.Sprintf("unknown command %q", c.Args().First()), 2)
	}
	s, err := openSession(c, true)
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("starting", "config", s.configPath, "backend", s.cfg.Storage.Backend)
	if err := ui.Run(s.store, s.cfg, s.configPath, s.firstLaunch, s.logger); err != nil {
		return errors.Wrap(err, "error running program")
	}
	return nil
}

func addAction(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	return withStore(c, func(s *session) error {
		t, err := s.store.Add(text)
		if errors.Is(err, todo.ErrEmptyText) {
			return cli.Exit("task text is empty", 1)
		}
		if err != nil {
			return err
		}
		printTask(c.App.Writer, t)
		return nil
	})
}

func listAction(c *cli.Context) error {
	filter, err := view.ParseFilter(c.String("filter"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return withStore(c, func(s *session) error {
		tasks := view.Apply(s.store.Tasks(), filter)
		if c.Bool("json") {
			data, err := todo.Encode(tasks)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(data))
			return nil
		}
		for _, t := range tasks {
			printTask(c.App.Writer, t)
		}
		return nil
	})
}

func toggleAction(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return withStore(c, func(s *session) error {
		t, err := s.store.Toggle(id)
		if err != nil {
			return notFound(err, id)
		}
		printTask(c.App.Writer, t)
		return nil
	})
}

func editAction(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	text := strings.Join(c.Args().Tail(), " ")
	return withStore(c, func(s *session) error {
		t, err := s.store.Edit(id, text)
		if errors.Is(err, todo.ErrEmptyText) {
			return cli.Exit("task text is empty", 1)
		}
		if err != nil {
			return notFound(err, id)
		}
		printTask(c.App.Writer, t)
		return nil
	})
}

func deleteAction(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return withStore(c, func(s *session) error {
		if err := s.store.Delete(id); err != nil {
			return notFound(err, id)
		}
		fmt.Fprintf(c.App.Writer, "deleted %d\n", id)
		return nil
	})
}

func withStore(c *cli.Context, fn func(*session) error) error {
	s, err := openSession(c, false)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func parseID(c *cli.Context) (int64, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, cli.Exit("task id is required", 2)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid task id %q", raw), 2)
	}
	return id, nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, todo.ErrNotFound) {
		return cli.Exit(fmt.Sprintf("task %d not found", id), 1)
	}
	return err
}

func printTask(w io.Writer, t todo.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%d [%s] %s\n", t.ID, mark, t.Text)
}
