package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
)

// Price accepts a JSON number, a numeric or currency-formatted string, or
// null. Anything unparsable decodes to 0.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*p = 0
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			f = 0
		}
		*p = Price(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*p = 0
		return nil
	}
	f, _ := extractor.CleanPrice(str)
	*p = Price(f)
	return nil
}

// ParseCompletion decodes the first JSON object in raw. Code fences and
// surrounding prose are tolerated.
func ParseCompletion(raw string) (*Completion, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, models.NewScrapeError(models.ErrCodeLLMEmpty, "empty completion", nil)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, models.NewScrapeError(models.ErrCodeLLMInvalidJSON, "completion has no JSON object", nil)
	}

	var c Completion
	if err := json.Unmarshal([]byte(s[start:end+1]), &c); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeLLMInvalidJSON, "decode completion", err)
	}
	c.Title = strings.TrimSpace(c.Title)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	return &c, nil
}
