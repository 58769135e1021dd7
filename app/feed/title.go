package feed

import (
	"regexp"
	"strconv"
	"strings"
)

// TitleInfo is the podcast identity derived from a free-text episode or
// podcast title. Zero-value fields mean the title could not be classified,
// which is an expected outcome, not an error.
type TitleInfo struct {
	PodcastName     string
	BasePodcastName string
	EpisodeNumber   *int
}

var (
	digitRunRe      = regexp.MustCompile(`\d+`)
	trailingDigitRe = regexp.MustCompile(`\d+$`)
)

// ParseTitle extracts a podcast name, a base (first-token) name, and an
// episode number from titles following the "Name Number - Episode Title"
// convention, e.g. "99Vidas 31 - Mega Drive".
//
// A trailing " | Podcast Name" suffix some feeds append is stripped first.
// The episode number is the LAST digit run found in the part before " - "
// (podcast names may themselves contain digits, as in "99Vidas"), while the
// podcast name strips only an end-anchored digit run. The two rules diverge
// for titles whose name embeds a different number than the trailing one;
// both are kept as-is because unifying them would change matching outcomes.
func ParseTitle(raw string) TitleInfo {
	title := raw
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	if !strings.Contains(title, " - ") {
		return TitleInfo{}
	}

	podcastPart := strings.TrimSpace(strings.SplitN(title, " - ", 2)[0])

	info := TitleInfo{
		PodcastName: strings.TrimSpace(trailingDigitRe.ReplaceAllString(podcastPart, "")),
	}

	if runs := digitRunRe.FindAllString(podcastPart, -1); len(runs) > 0 {
		if n, err := strconv.Atoi(runs[len(runs)-1]); err == nil {
			info.EpisodeNumber = &n
		}
	}

	info.BasePodcastName = BaseName(info.PodcastName)

	return info
}

// BaseName returns the first whitespace-delimited token of a podcast name,
// used as a looser identity when full-name extraction is unreliable.
func BaseName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
