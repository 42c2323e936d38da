package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidroman0O/firm-counter/internal/storage"
)

func openStore() (storage.Store, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path, cfg.Storage.Origin)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// showCount prints the persisted count, or the initial value when none is
// stored.
func showCount(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cache := storage.NewIntCache(store, cfg.GetStorageKey())
	v, err := cache.Get(cfg.Counter.Initial)
	if err != nil {
		logger.Warn("could not read persisted count", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", cache.Key(), v)
	return nil
}

func clearCount(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cache := storage.NewIntCache(store, cfg.GetStorageKey())
	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", cache.Key(), err)
	}

	logger.Info("persisted count cleared", zap.String("key", cache.Key()))
	fmt.Fprintf(cmd.OutOrStdout(), "%s cleared\n", cache.Key())
	return nil
}
