package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dvloznov/spendsense/internal/gcs"
	"github.com/dvloznov/spendsense/internal/ledger"
	"github.com/dvloznov/spendsense/internal/logger"
)

const snapshotContentType = "application/json"

type uploadOptions struct {
	file      string
	userID    string
	gcsPrefix string
	to        string
	bigquery  bool
}

func (a *app) uploadCmd() *cobra.Command {
	var opts uploadOptions
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a ledger snapshot to Cloud Storage and/or BigQuery",
		Long: `Upload validates a JSON ledger snapshot and publishes it.

With --gcs-prefix each user's records are written to <prefix>/<user_id>.json,
the layout the gcs ledger source reads. With --to the file is copied
unchanged to a single object. With --bigquery each user's rows in the
configured dataset are replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.gcsPrefix == "" && opts.to == "" && !opts.bigquery {
				return fmt.Errorf("nothing to do: set --gcs-prefix, --to or --bigquery")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return a.upload(logger.WithContext(ctx, a.log), cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "snapshot JSON file")
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "", "only upload this user (default all users in the file)")
	cmd.Flags().StringVar(&opts.gcsPrefix, "gcs-prefix", "", "gs:// prefix for per-user snapshot objects")
	cmd.Flags().StringVar(&opts.to, "to", "", "gs:// URI to copy the whole file to")
	cmd.Flags().BoolVar(&opts.bigquery, "bigquery", false, "replace the users' rows in the configured BigQuery dataset")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) upload(ctx context.Context, cmd *cobra.Command, opts uploadOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	snap, err := ledger.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("upload: %s: %w", opts.file, err)
	}

	users := []string{opts.userID}
	if opts.userID == "" {
		users = userIDs(snap)
	}
	perUser := make([]ledger.Snapshot, 0, len(users))
	for _, id := range users {
		us, err := snap.ForUser(id)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		perUser = append(perUser, us)
	}

	out := cmd.OutOrStdout()

	if opts.gcsPrefix != "" || opts.to != "" {
		store, closeStore, err := a.deps.openStore(ctx)
		if err != nil {
			return fmt.Errorf("upload: open object store: %w", err)
		}
		defer closeStore()

		if opts.to != "" {
			if _, _, err := gcs.ParseURI(opts.to); err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			if err := gcs.UploadFile(ctx, store, opts.to, opts.file, snapshotContentType); err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			fmt.Fprintf(out, "Uploaded %s to %s\n", opts.file, opts.to)
		}

		if opts.gcsPrefix != "" {
			src := ledger.NewGCSSource(store, opts.gcsPrefix)
			for _, us := range perUser {
				data, err := json.Marshal(us)
				if err != nil {
					return fmt.Errorf("upload: encode %s: %w", us.UserID, err)
				}
				uri := src.ObjectURI(us.UserID)
				if err := store.Write(ctx, uri, data, snapshotContentType); err != nil {
					return fmt.Errorf("upload: %w", err)
				}
				a.log.Info().Str("user_id", us.UserID).Str("uri", uri).Msg("Snapshot uploaded")
				fmt.Fprintf(out, "Uploaded %s to %s\n", us.UserID, uri)
			}
		}
	}

	if opts.bigquery {
		cfg, err := a.loadConfig()
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		if cfg.Ledger.Project == "" || cfg.Ledger.Dataset == "" {
			return fmt.Errorf("upload: --bigquery needs ledger.project and ledger.dataset (GCP_PROJECT, BQ_DATASET)")
		}

		writer, err := a.deps.openWriter(ctx, cfg.Ledger.Project, cfg.Ledger.Dataset)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		defer writer.Close()

		for _, us := range perUser {
			if err := writer.ReplaceUserLedger(ctx, us); err != nil {
				return fmt.Errorf("upload: %s: %w", us.UserID, err)
			}
			fmt.Fprintf(out, "Replaced %s in %s.%s (%d accounts, %d transactions, %d liabilities)\n",
				us.UserID, cfg.Ledger.Project, cfg.Ledger.Dataset,
				len(us.Accounts), len(us.Transactions), len(us.Liabilities))
		}
	}
	return nil
}

// userIDs lists the distinct owners of the snapshot's accounts.
func userIDs(snap ledger.Snapshot) []string {
	seen := map[string]bool{}
	var ids []string
	for _, a := range snap.Accounts {
		if a.UserID != "" && !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}
	sort.Strings(ids)
	return ids
}
