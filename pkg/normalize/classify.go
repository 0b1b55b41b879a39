package normalize

// Kind discriminates the closed set of backend response shapes.
type Kind int

const (
	// KindEmpty means no branch matched; callers render an empty message.
	KindEmpty Kind = iota
	KindError
	KindFormatted
	KindTrends
	KindAnalytics
	KindAnswer
	KindWorkflowStats
	KindSummary
	KindFallback
)

// String returns the shape name, mostly for logging.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindFormatted:
		return "formatted"
	case KindTrends:
		return "trends"
	case KindAnalytics:
		return "analytics"
	case KindAnswer:
		return "answer"
	case KindWorkflowStats:
		return "workflow_stats"
	case KindSummary:
		return "summary"
	case KindFallback:
		return "fallback"
	default:
		return "empty"
	}
}

// Classified is a Response reduced to one rendering shape.
type Classified struct {
	Kind       Kind
	Text       string // error, formatted or fallback text
	Results    *Results
	RawResults map[string]any
	Timestamp  string
}

// Classify selects the rendering shape for a response. Branch priority is
// fixed: several shapes can match structurally at once (a results object may
// carry both formattedMessage and summary) and the first match wins.
func Classify(resp *Response) Classified {
	if !resp.Success {
		return Classified{Kind: KindError, Text: resp.Error}
	}

	results, raw := resp.DecodeResults()
	c := Classified{Results: results, RawResults: raw, Timestamp: resp.Timestamp}

	if results != nil {
		switch {
		case results.FormattedMessage != "":
			c.Kind = KindFormatted
			c.Text = results.FormattedMessage
			return c
		case resp.ToolExecuted == ToolEventTrends && len(results.Trends) > 0:
			c.Kind = KindTrends
			return c
		case resp.ToolExecuted == ToolEventAnalytics && len(results.Analytics) > 0:
			c.Kind = KindAnalytics
			return c
		case results.Answer != nil && results.Answer.Summary != "":
			c.Kind = KindAnswer
			return c
		case resp.ToolExecuted == ToolWorkflowStats:
			c.Kind = KindWorkflowStats
			return c
		case results.Summary != "":
			c.Kind = KindSummary
			return c
		}
	}

	for _, text := range []string{resp.Result, resp.Response, resp.Message} {
		if text != "" {
			c.Kind = KindFallback
			c.Text = text
			return c
		}
	}

	c.Kind = KindEmpty
	return c
}
