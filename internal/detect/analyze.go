package detect

// Report is the outcome of running detection on one version of a page.
type Report struct {
	Fingerprint string              `json:"fingerprint"`
	Changed     bool                `json:"changed"`
	Counts      Counts              `json:"counts"`
	Notable     []string            `json:"notable"`
	Contexts    map[string][]string `json:"contexts"`
}

// Analyze fingerprints text and, when it differs from previousFingerprint,
// diffs keyword counts against previous and extracts the sentence windows
// of each notable keyword. An empty previousFingerprint means the page was
// never seen. Empty text has no content and is never reported as changed.
// Counts are always reported.
func Analyze(keywords []string, text, previousFingerprint string, previous Counts) (*Report, error) {
	r := &Report{
		Fingerprint: Fingerprint(text),
		Notable:     []string{},
		Contexts:    map[string][]string{},
	}
	r.Changed = text != "" && previousFingerprint != r.Fingerprint

	counts, err := CountKeywords(keywords, text)
	if err != nil {
		return nil, err
	}
	r.Counts = counts

	if !r.Changed {
		return r, nil
	}

	r.Notable = Diff(previous, counts)
	if len(r.Notable) == 0 {
		return r, nil
	}

	r.Contexts, err = ExtractContexts(r.Notable, text)
	if err != nil {
		return nil, err
	}
	return r, nil
}
