package detector

import "regexp"

// ForeignFormat describes a log or timestamp shape that the access-log
// grammar rejects but that is common enough to name in a diagnosis.
type ForeignFormat struct {
	Name    string         // Human-readable name
	Pattern *regexp.Regexp // Compiled regex (set during init)
	Hint    string         // What to change so the lines are accepted
}

// DefaultForeignFormats returns the built-in formats, most specific first.
func DefaultForeignFormats() []*ForeignFormat {
	formats := []struct {
		name, pattern, hint string
	}{
		{
			name:    "Apache/NGINX timestamp with month name",
			pattern: `\[\d{1,2}/[A-Za-z]{3}/\d{4}:\d{2}:\d{2}:\d{2}\s+[+-]\d{4}\]`,
			hint:    "log the date with a numeric month (D/M/YYYY:HH:MM:SS +HHMM)",
		},
		{
			name:    "Common/combined log without response time",
			pattern: `\]\s"[^"]*"\s\d{3}\s\S+\s"[^"]*"\s"[^"]*"\s*$`,
			hint:    "add the request time in milliseconds after the body size",
		},
		{
			name:    "Response time without fraction",
			pattern: `\]\s"[^"]*"\s\d{3}\s\S+\s\d+\s"`,
			hint:    "log the response time with a decimal part, e.g. 44.0",
		},
		{
			name:    "Nginx $request_time in seconds",
			pattern: `\]\s"[^"]*"\s\d{3}\s\S+\s\d+\.\d{3}\s"[^"]*"\s"[^"]*"\s*$`,
			hint:    "the trailing field after the user agent is missing",
		},
		{
			name:    "JSON log line",
			pattern: `^\{.*\}$`,
			hint:    "switch the access log back to the plain text format",
		},
		{
			name:    "ISO 8601 timestamp",
			pattern: `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`,
			hint:    "this looks like an application log, not an access log",
		},
		{
			name:    "Syslog (BSD)",
			pattern: `^\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\s`,
			hint:    "strip the syslog prefix before analysis",
		},
	}

	out := make([]*ForeignFormat, 0, len(formats))
	for _, f := range formats {
		out = append(out, &ForeignFormat{
			Name:    f.name,
			Pattern: regexp.MustCompile(f.pattern),
			Hint:    f.hint,
		})
	}
	return out
}

// Guess returns the first format that matches line, or nil.
func Guess(formats []*ForeignFormat, line string) *ForeignFormat {
	for _, f := range formats {
		if f.Pattern.MatchString(line) {
			return f
		}
	}
	return nil
}
