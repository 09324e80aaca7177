package browser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// indexAttr is stamped on every slot candidate by tagScript so a parsed slot
// can point back at its element.
const indexAttr = "data-tb-idx"

var tagScript = fmt.Sprintf(`() => {
	const els = document.querySelectorAll(%q);
	els.forEach((el, i) => el.setAttribute(%q, String(i)));
	return els.length;
}`, slotCandidates, indexAttr)

// ParseOptions fill in what the markup does not say.
type ParseOptions struct {
	DefaultCourt string
	Duration     time.Duration
}

var clockRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// ParseSlots reads the tagged slot candidates out of page HTML. Only elements
// whose class says available, and not booked, disabled or unavailable, and
// whose text holds a clock time come back. Date is left for the caller.
func ParseSlots(html string, opts ParseOptions) ([]booking.Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse slot html: %w", err)
	}
	if opts.Duration <= 0 {
		opts.Duration = time.Hour
	}

	var out []booking.Slot
	seen := map[string]bool{}
	doc.Find("[" + indexAttr + "]").Each(func(_ int, s *goquery.Selection) {
		class := strings.ToLower(s.AttrOr("class", ""))
		if !isAvailableClass(class) {
			return
		}
		start, ok := parseClockText(s.Text())
		if !ok {
			return
		}
		end := start.Add(opts.Duration)
		if end > booking.Clock(24, 0) {
			return
		}
		slot := booking.Slot{
			Resource:  courtOf(s, opts.DefaultCourt),
			Start:     start,
			End:       end,
			Available: true,
			Locator:   fmt.Sprintf(`[%s="%s"]`, indexAttr, s.AttrOr(indexAttr, "")),
		}
		key := slot.Resource + "|" + start.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, slot)
	})
	return out, nil
}

func isAvailableClass(class string) bool {
	for _, bad := range []string{"booked", "disabled", "unavailable"} {
		if strings.Contains(class, bad) {
			return false
		}
	}
	return strings.Contains(class, "available")
}

// parseClockText finds the first "8:00", "08:00 PM" or "9am" in text. A bare
// number is ignored so court names like "Court 2" do not read as 02:00.
func parseClockText(text string) (booking.ClockTime, bool) {
	for _, m := range clockRe.FindAllStringSubmatch(text, -1) {
		if m[2] == "" && m[3] == "" {
			continue
		}
		h, _ := strconv.Atoi(m[1])
		mm := 0
		if m[2] != "" {
			mm, _ = strconv.Atoi(m[2])
		}
		switch strings.ToLower(m[3]) {
		case "pm":
			if h < 1 || h > 12 {
				continue
			}
			if h != 12 {
				h += 12
			}
		case "am":
			if h < 1 || h > 12 {
				continue
			}
			if h == 12 {
				h = 0
			}
		}
		if h > 23 || mm > 59 {
			continue
		}
		return booking.Clock(h, mm), true
	}
	return 0, false
}

func courtOf(s *goquery.Selection, fallback string) string {
	for _, attr := range []string{"data-court", "data-resource"} {
		if v := strings.TrimSpace(s.Closest("[" + attr + "]").AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return fallback
}
