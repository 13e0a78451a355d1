// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/db"
)

// Row of the samples table.
type SampleRow struct {
	CycleID         string    `db:"cycle_id"`
	Timestamp       time.Time `db:"timestamp"`
	Plugin          string    `db:"plugin"`
	Instance        string    `db:"instance"`
	Value           float64   `db:"value"`
	Hostname        string    `db:"hostname"`
	Unit            string    `db:"unit"`
	Aggregate       string    `db:"aggregate"`
	AggregateID     string    `db:"aggregate_id"`
	DiscardHostname bool      `db:"discard_hostname"`
}

// Table in which the samples are stored.
func (SampleRow) TableName() string { return "hypervisor_stats_samples" }

func newSampleRow(sample Sample) SampleRow {
	return SampleRow{
		CycleID:         sample.CycleID,
		Timestamp:       sample.Timestamp,
		Plugin:          sample.Plugin,
		Instance:        sample.Instance,
		Value:           sample.Value,
		Hostname:        sample.Meta.Hostname,
		Unit:            sample.Meta.Unit,
		Aggregate:       sample.Meta.Aggregate,
		AggregateID:     sample.Meta.AggregateID,
		DiscardHostname: sample.Meta.DiscardHostname,
	}
}

// Sink storing every sample as a row in the database.
type DBSink struct {
	db *db.DB
}

// Create a new database sink and the samples table if it does not exist.
func NewDBSink(database *db.DB) (*DBSink, error) {
	table := database.AddTable(SampleRow{})
	if err := database.CreateTable(table); err != nil {
		return nil, fmt.Errorf("failed to create samples table: %w", err)
	}
	return &DBSink{db: database}, nil
}

func (s *DBSink) Name() string {
	return "db"
}

func (s *DBSink) Submit(ctx context.Context, sample Sample) error {
	row := newSampleRow(sample)
	return s.db.WithContext(ctx).Insert(&row)
}
