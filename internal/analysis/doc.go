// Package analysis implements the survey statistical engine: conversion
// of raw Likert responses into normalized scores, multi-level
// aggregation (question, category, subset, population), comparison of a
// selected subset against the full population, and threshold-based
// qualitative recommendations.
//
// The package is pure computation over in-memory data: no I/O, no
// network, no persisted state. Callers load response rows and category
// configuration elsewhere, then drive a Runner:
//
//	runner := analysis.NewRunner(rows, categories, scale, thresholds, nil, logger)
//	result, err := runner.Run(ctx, analysis.Selection{Team: "Eng", Location: analysis.AllGroups})
//
// Normalization is total: every raw cell maps deterministically to
// either a valid score or the explicit missing sentinel, never an error.
// Empty subsets and categories with zero valid responses surface as
// explicit no-data states rather than zero means, and malformed cells
// become data-quality notes rather than failures.
package analysis
