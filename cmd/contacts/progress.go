package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/campaign"
	"github.com/JonMunkholm/outreach/internal/core"
)

type progressOptions struct {
	status     string
	total      int
	successful int
	failed     int

	pending        int
	inProgress     int
	completed      int
	failedContacts int

	campaignID string
	apiURL     string
	userUID    string
	asJSON     bool
}

func progressCmd() *cobra.Command {
	opts := &progressOptions{}
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Compute campaign progress",
		Long: `Compute campaign progress from counters given as flags, or fetch them
from the campaign service with --campaign.

Live counters (--pending, --in-progress, --completed, --failed-contacts)
replace the call counters when any of them is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				v   campaign.ProgressView
				err error
			)
			if opts.campaignID != "" {
				v, err = opts.fetch(cmd)
				if err != nil {
					return err
				}
			} else {
				v = campaign.Progress(opts.summary(), opts.monitoring(cmd))
			}
			return writeProgress(cmd.OutOrStdout(), v, opts.asJSON)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.status, "status", string(campaign.StatusDraft), "campaign status")
	f.IntVar(&opts.total, "total", 0, "total contacts")
	f.IntVar(&opts.successful, "successful", 0, "successful calls")
	f.IntVar(&opts.failed, "failed", 0, "failed calls")
	f.IntVar(&opts.pending, "pending", 0, "live: pending contacts")
	f.IntVar(&opts.inProgress, "in-progress", 0, "live: contacts being dialed")
	f.IntVar(&opts.completed, "completed", 0, "live: completed contacts")
	f.IntVar(&opts.failedContacts, "failed-contacts", 0, "live: failed contacts")
	f.StringVar(&opts.campaignID, "campaign", "", "fetch counters for this campaign from the campaign service")
	f.StringVar(&opts.apiURL, "api-url", os.Getenv("CAMPAIGN_API_URL"), "campaign service base URL")
	f.StringVar(&opts.userUID, "user-uid", "", "campaign owner (required with --campaign)")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON")
	return cmd
}

func (o *progressOptions) summary() campaign.Summary {
	return campaign.Summary{
		Status:          campaign.Status(o.status),
		TotalContacts:   o.total,
		SuccessfulCalls: o.successful,
		FailedCalls:     o.failed,
	}
}

// monitoring returns nil unless a live-counter flag was given.
func (o *progressOptions) monitoring(cmd *cobra.Command) *campaign.MonitoringSnapshot {
	f := cmd.Flags()
	if !f.Changed("pending") && !f.Changed("in-progress") && !f.Changed("completed") && !f.Changed("failed-contacts") {
		return nil
	}
	return &campaign.MonitoringSnapshot{
		PendingContacts:    o.pending,
		InProgressContacts: o.inProgress,
		CompletedContacts:  o.completed,
		FailedContacts:     o.failedContacts,
	}
}

func (o *progressOptions) fetch(cmd *cobra.Command) (campaign.ProgressView, error) {
	if o.apiURL == "" {
		return campaign.ProgressView{}, core.ErrBackendNotConfigured
	}
	client := campaign.NewClient(o.apiURL, nil, 30*time.Second)
	svc := core.NewService(core.ServiceConfig{}, nil, client)

	v, err := svc.Progress(cmd.Context(), o.campaignID, o.userUID)
	if err != nil {
		return campaign.ProgressView{}, err
	}
	return *v, nil
}

func writeProgress(w io.Writer, v campaign.ProgressView, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(v)
	}
	_, err := fmt.Fprintf(w, "%s: %d%% (%d of %d processed, %d pending, %d in progress)\n",
		v.StatusLabel, v.Percent, v.Processed, v.Total, v.Pending, v.InProgress)
	return err
}
