package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/player"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/desertthunder/streamz/internal/tasks"
	"github.com/desertthunder/streamz/internal/ui"
	"github.com/urfave/cli/v3"
)

// useFileLogger redirects logs to log.file so they do not interfere with TUI rendering.
func (r *Runner) useFileLogger() error {
	fileLogger, err := shared.NewFileLogger(shared.ExpandPath(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)
	return nil
}

// playerConfig builds the player template from the [player] config section.
func (r *Runner) playerConfig() ui.PlayerConfig {
	opts := player.DefaultOptions()
	if r.config.Player.ReportInterval > 0 {
		opts.Interval = r.config.Player.ReportInterval
	}
	opts.CatchUp = r.config.Player.CatchUpBuckets
	if r.config.Player.Volume > 0 {
		opts.Volume = r.config.Player.Volume
	}
	opts.Duration = r.config.Player.DefaultDuration
	opts.Logger = r.logger

	return ui.PlayerConfig{
		Tracker:         opts,
		ControlsTimeout: r.config.Player.ControlsTimeout(),
	}
}

func (r *Runner) homeOpts() tasks.HomeOpts {
	return tasks.HomeOpts{
		NumWorkers: r.config.Home.Workers,
		RateLimit:  r.config.Home.RateLimit,
	}
}

func runProgram(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// TUI launches the browser: home rows, title detail and the player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.useFileLogger(); err != nil {
		return err
	}

	m, err := r.startSession(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Deps{
		Catalog:         r.api,
		Reporter:        r.api,
		Session:         m,
		Home:            r.homeOpts(),
		Player:          r.playerConfig(),
		DefaultDuration: r.config.Player.DefaultDuration,
		Logger:          r.logger,
	})
	defer model.Close()
	return runProgram(ctx, model)
}

// Play opens the player for one title or episode and reports progress while it runs.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	content, err := r.api.Content(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch content %d: %w", id, err)
	}

	cfg := r.playerConfig()
	cfg.Standalone = true
	cfg.Title = content.Title
	cfg.Target = models.Target{ContentID: content.ID}
	if d := cmd.Int("duration"); d > 0 {
		cfg.Tracker.Duration = float64(d)
	}

	if episodeID := int(cmd.Int("episode")); episodeID > 0 {
		e, ok := content.Episode(episodeID)
		if !ok {
			return fmt.Errorf("%w: %d is not an episode of %s", shared.ErrEpisodeNotFound, episodeID, content.Title)
		}
		cfg.Title = fmt.Sprintf("%s - %s %s", content.Title, e.Code(), e.Title)
		cfg.Target.EpisodeID = e.ID
		if !cmd.IsSet("duration") && e.Duration > 0 {
			cfg.Tracker.Duration = e.DurationSeconds()
		}
	} else if len(content.Episodes) > 0 {
		r.logger.Warn("playing a series without --episode, progress is recorded against the title", "content", content.ID)
	}

	if cmd.Bool("open") {
		if err := shared.OpenURL(content.VideoFile, cmd.String("player")); err != nil {
			r.logger.Warn("failed to open external player", "error", err)
		}
	}

	if err := r.useFileLogger(); err != nil {
		return err
	}
	cfg.Tracker.Logger = r.logger

	model := ui.NewPlayerModel(ctx, r.api, cfg)
	if err := runProgram(ctx, model); err != nil {
		return err
	}

	tracker := model.Tracker()
	tracker.Flush()
	state := tracker.State()
	return r.writePlain("Stopped at %s / %s, %d progress report(s) sent\n",
		shared.FormatTime(state.Elapsed()), shared.FormatTime(state.DurationSeconds), tracker.Reports())
}
