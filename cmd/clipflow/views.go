package main

import (
	"strconv"
	"time"

	"clipflow/internal/marker"
	"clipflow/internal/project"
	"clipflow/internal/slicer"
)

type projectView struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Status          string           `json:"status"`
	SourceFilename  string           `json:"source_filename,omitempty"`
	SourcePath      string           `json:"source_path,omitempty"`
	DurationSeconds float64          `json:"duration,omitempty"`
	Progress        float64          `json:"progress"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	Settings        project.Settings `json:"settings"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

func newProjectView(p *project.Project) projectView {
	return projectView{
		ID:              p.ID,
		Name:            p.Name,
		Status:          string(p.Status),
		SourceFilename:  p.SourceFilename,
		SourcePath:      p.SourcePath,
		DurationSeconds: p.DurationSeconds,
		Progress:        p.Progress,
		ErrorMessage:    p.ErrorMessage,
		Settings:        p.Settings,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func projectRows(projects []*project.Project) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			string(p.Status),
			formatPercent(p.Progress),
			p.SourceFilename,
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

var projectColumns = []column{
	{header: "ID"},
	{header: "Name"},
	{header: "Status"},
	{header: "Progress", align: alignRight},
	{header: "Source"},
	{header: "Created"},
}

func segmentRows(segments []slicer.Segment) [][]string {
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		trigger := ""
		if seg.Trigger != nil {
			trigger = seg.Trigger.Type.String() + " " + seg.Trigger.Text
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seg.ID,
			seg.Kind.String(),
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			formatSeconds(seg.Duration()),
			yesNo(seg.Enabled),
			yesNo(seg.ManualAdjusted),
			trigger,
		})
	}
	return rows
}

var segmentColumns = []column{
	{header: "#", align: alignRight},
	{header: "ID"},
	{header: "Kind"},
	{header: "Start", align: alignRight},
	{header: "End", align: alignRight},
	{header: "Length", align: alignRight},
	{header: "Enabled"},
	{header: "Edited"},
	{header: "Trigger"},
}

func markerRows(markers []marker.Marker) [][]string {
	rows := make([][]string, 0, len(markers))
	for _, m := range markers {
		rows = append(rows, []string{
			m.Type.String(),
			m.Text,
			formatSeconds(m.Start),
			formatSeconds(m.End),
			formatSeconds(m.Confidence),
		})
	}
	return rows
}

var markerColumns = []column{
	{header: "Type"},
	{header: "Text"},
	{header: "Start", align: alignRight},
	{header: "End", align: alignRight},
	{header: "Confidence", align: alignRight},
}
