package domain

import "time"

// EncodedPage is one rendered output unit: the encoded bytes of a composed
// grid page plus the metadata a download needs. Pages are transient; they
// live in memory until the next generation run replaces them.
type EncodedPage struct {
	Index    int    // zero-based page number
	Filename string // suggested download filename
	MIMEType string // "image/png" or "image/jpeg"
	Data     []byte
	Width    int
	Height   int
}

// GenerateResult is the outcome of one generation run.
type GenerateResult struct {
	Pages      []EncodedPage
	Quality    int  // export quality the pages were encoded with
	Cancelled  bool // run was cancelled; Pages holds the pages finished before that
	StartedAt  time.Time
	FinishedAt time.Time
}

// Progress reports per-page completion during a run.
type Progress struct {
	PagesDone  int
	PagesTotal int
}
