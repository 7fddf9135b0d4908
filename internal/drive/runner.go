package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
)

// Run drives a running service through a generated gesture script and
// verifies what it reports afterwards.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting tier list drive",
		logger.String("baseURL", config.BaseURL),
		logger.Int("steps", config.Steps),
		logger.Any("seed", config.Seed),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("reset", config.Reset),
		logger.Bool("prepare", config.Prepare))

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Start from an empty session
	itemIDs, err := prepareSession(ctx, client, config)
	if err != nil {
		return err
	}

	// Step 3: Generate (or load) and replay gestures
	var script Script
	if config.ScriptFile != "" {
		script, err = LoadScript(config.ScriptFile)
		stats.GesturesGenerated = len(script.Gestures)
	} else {
		script, err = generateScript(ctx, config, itemIDs, stats)
	}
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}
	if err := applyScript(ctx, client, config, script, stats); err != nil {
		return fmt.Errorf("gesture replay failed: %w", err)
	}

	// Step 4: Verify results
	if err := verifyResults(ctx, client, config, script, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 5: Prepare edits
	if config.Prepare {
		if err := prepareEdits(ctx, client, script, stats); err != nil {
			return fmt.Errorf("edit preparation failed: %w", err)
		}
	}

	// Step 6: Save the script
	if config.OutputFile != "" {
		if err := saveScript(ctx, config.OutputFile, script); err != nil {
			logger.Get().Warn(ctx, "failed to save script", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "drive completed successfully")
	return nil
}

// prepareSession resets the session when asked and refuses to drive a
// session that already has ranked items.
func prepareSession(ctx context.Context, client *HTTPClient, config *Config) ([]string, error) {
	if config.Reset {
		if err := client.Reset(ctx); err != nil {
			return nil, fmt.Errorf("session reset failed: %w", err)
		}
	}
	items, err := client.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("item listing failed: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Ranked {
			return nil, fmt.Errorf("session already ranks %s; rerun with --reset", it.ItemID)
		}
		ids = append(ids, it.ItemID)
	}
	return ids, nil
}

// prepareEdits asks for an edit bundle and polls until it settles.
func prepareEdits(ctx context.Context, client *HTTPClient, script Script, stats *Stats) error {
	if len(script.Ranked) == 0 {
		logger.Get().Info(ctx, "nothing ranked; skipping edit preparation")
		return nil
	}
	meta := prepare.Metadata{
		Title:       fmt.Sprintf("drive seed %d", script.Seed),
		Description: fmt.Sprintf("%d gestures", len(script.Gestures)),
	}
	if err := client.Prepare(ctx, meta); err != nil {
		return err
	}

	ticker := time.NewTicker(preparePollInterval)
	defer ticker.Stop()
	for attempt := 0; attempt < preparePollAttempts; attempt++ {
		state, err := client.Preparation(ctx)
		if err != nil {
			return err
		}
		switch state.Status {
		case prepare.StatusSuccess:
			if state.Bundle != nil {
				stats.EditOperations = state.Bundle.Summary.Total
			}
			logger.Get().Info(ctx, "edits prepared",
				logger.Int("operations", stats.EditOperations))
			return nil
		case prepare.StatusError:
			return fmt.Errorf("service reported: %s", state.Message)
		case prepare.StatusIdle:
			return fmt.Errorf("preparation was reset before it finished")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("preparation still pending after %d polls", preparePollAttempts)
}

// saveScript writes the script as YAML or JSON depending on the extension.
func saveScript(ctx context.Context, filename string, script Script) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(script)
	default:
		data, err = json.MarshalIndent(script, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode script: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}

	logger.Get().Info(ctx, "script saved to file", logger.String("filename", filename))
	return nil
}

// LoadScript reads a script written by saveScript.
func LoadScript(filename string) (Script, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Script{}, err
	}
	var script Script
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &script)
	default:
		err = json.Unmarshal(data, &script)
	}
	if err != nil {
		return Script{}, fmt.Errorf("failed to decode script %s: %w", filename, err)
	}
	return script, nil
}

// displayFinalStats logs the drive statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate float64
	if stats.GesturesGenerated > 0 {
		acceptRate = float64(stats.GesturesApplied) / float64(stats.GesturesGenerated) * PercentageMultiplier
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("gesturesGenerated", stats.GesturesGenerated),
		logger.Int("gesturesApplied", stats.GesturesApplied),
		logger.Int("gesturesRejected", stats.GesturesRejected),
		logger.Int("inserts", stats.Inserts),
		logger.Int("removes", stats.Removes),
		logger.Int("scoreUpdates", stats.ScoreUpdates),
		logger.Int("adjustments", stats.Adjustments),
		logger.Int("rankedAtEnd", stats.RankedAtEnd),
		logger.Int("editOperations", stats.EditOperations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate))
}
