package exportfeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ReportEntry is one report offered by the practice management system's
// export catalog.
type ReportEntry struct {
	Category    string `json:"category"`
	ReportID    int    `json:"reportId"`
	Description string `json:"description"`
	File        string `json:"file"`
	Active      bool   `json:"active"`
}

type catalogEnvelope struct {
	Message string `json:"Message"`
}

type catalogPayload struct {
	AllowedCategories []struct {
		Description string `json:"description"`
		Reports     []struct {
			ItemID      int    `json:"itemId"`
			Description string `json:"description"`
			ReportFile  string `json:"reportFile"`
			Active      *bool  `json:"active"`
		} `json:"reports"`
	} `json:"allowedCategories"`
}

// ParseCatalog decodes a captured catalog notification into report entries.
// Captured envelopes sometimes carry trailing padding past the JSON body, so
// decoding starts from the last closing brace.
func ParseCatalog(data []byte) ([]ReportEntry, error) {
	end := bytes.LastIndexByte(data, '}')
	if end == -1 {
		return nil, errors.New("exportfeed: catalog payload has no JSON terminator")
	}

	var envelope catalogEnvelope
	if err := json.Unmarshal(data[:end+1], &envelope); err != nil {
		return nil, fmt.Errorf("exportfeed: decode catalog envelope: %w", err)
	}
	if envelope.Message == "" {
		return nil, errors.New("exportfeed: catalog envelope missing Message")
	}

	var payload catalogPayload
	if err := json.Unmarshal([]byte(envelope.Message), &payload); err != nil {
		return nil, fmt.Errorf("exportfeed: decode catalog message: %w", err)
	}

	var entries []ReportEntry
	for _, category := range payload.AllowedCategories {
		categoryName := category.Description
		if categoryName == "" {
			categoryName = "Unknown"
		}
		for _, report := range category.Reports {
			active := true
			if report.Active != nil {
				active = *report.Active
			}
			entries = append(entries, ReportEntry{
				Category:    categoryName,
				ReportID:    report.ItemID,
				Description: report.Description,
				File:        report.ReportFile,
				Active:      active,
			})
		}
	}
	return entries, nil
}

// ReportNames returns the distinct report descriptions in catalog order.
func ReportNames(entries []ReportEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	var names []string
	for _, entry := range entries {
		if _, ok := seen[entry.Description]; ok {
			continue
		}
		seen[entry.Description] = struct{}{}
		names = append(names, entry.Description)
	}
	return names
}
