package main

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderResult(w io.Writer, cfg config, res *result) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"algorithm", "values", "workers", "epsilon", "build", "merge", "query", "retained", "heap", "answer", "deviation"})
	retained := "-"
	if res.Retained > 0 {
		retained = humanize.Comma(int64(res.Retained))
	}
	tbl.AppendRow(table.Row{
		cfg.Algorithm,
		humanize.Comma(int64(cfg.Values)),
		cfg.Workers,
		cfg.Epsilon,
		res.Build,
		res.MergeDur,
		res.Query,
		retained,
		humanize.Bytes(res.HeapUsed),
		fmt.Sprintf("%.6f", res.Answer),
		fmt.Sprintf("%.6f", math.Abs(res.Answer-targetValue)),
	})
	tbl.Render()
}
