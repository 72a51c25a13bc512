package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// timestampLayouts are tried in order for the transaction date column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
}

type header map[string]int

func parseHeader(row []interface{}, required ...string) (header, error) {
	h := header{}
	for i, v := range toStrings(row) {
		h[normalize(v)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := h[normalize(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s", strings.Join(missing, ","))
	}
	return h, nil
}

func (h header) get(row []string, name string) string {
	idx, ok := h[normalize(name)]
	if !ok {
		return ""
	}
	return safeGet(row, idx)
}

// parseTransactions keeps the rows of userID. Rows that cannot be parsed are
// counted and skipped; a missing date yields a zero Timestamp.
func parseTransactions(values [][]interface{}, userID int64) ([]core.Transaction, int, error) {
	out := []core.Transaction{}
	if len(values) == 0 {
		return out, 0, nil
	}
	h, err := parseHeader(values[0], "ID", "UserID", "Amount", "Sign")
	if err != nil {
		return nil, 0, err
	}

	skipped := 0
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		uid, err := strconv.ParseInt(h.get(row, "UserID"), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		if uid != userID {
			continue
		}
		amount, err := core.ParseAmount(h.get(row, "Amount"))
		if err != nil {
			skipped++
			continue
		}
		sign, err := core.ParseSign(h.get(row, "Sign"))
		if err != nil {
			skipped++
			continue
		}
		ts, err := parseTimestamp(h.get(row, "Date"))
		if err != nil {
			skipped++
			continue
		}
		out = append(out, core.Transaction{
			ID:         h.get(row, "ID"),
			UserID:     uid,
			Amount:     amount,
			Sign:       sign,
			Timestamp:  ts,
			CategoryID: h.get(row, "CategoryID"),
			ItemID:     h.get(row, "ItemID"),
		})
	}
	return out, skipped, nil
}

func parseGoals(values [][]interface{}, userID int64) ([]core.Goal, int, error) {
	out := []core.Goal{}
	if len(values) == 0 {
		return out, 0, nil
	}
	h, err := parseHeader(values[0], "ID", "UserID", "MaxAmount", "Type")
	if err != nil {
		return nil, 0, err
	}

	skipped := 0
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		uid, err := strconv.ParseInt(h.get(row, "UserID"), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		if uid != userID {
			continue
		}
		g := core.Goal{ID: h.get(row, "ID"), UserID: uid, CategoryID: h.get(row, "CategoryID")}
		if g.MaxAmount, err = core.ParseAmount(h.get(row, "MaxAmount")); err != nil {
			skipped++
			continue
		}
		if g.Type, err = core.ParseRepetitionType(h.get(row, "Type")); err != nil {
			skipped++
			continue
		}
		if g.StartDate, err = core.ParseDate(h.get(row, "StartDate")); err != nil {
			skipped++
			continue
		}
		if g.EndDate, err = core.ParseDate(h.get(row, "EndDate")); err != nil {
			skipped++
			continue
		}
		out = append(out, g)
	}
	return out, skipped, nil
}

// parseCategories dedups by ID, first row wins.
func parseCategories(values [][]interface{}) ([]core.Category, error) {
	out := []core.Category{}
	if len(values) == 0 {
		return out, nil
	}
	h, err := parseHeader(values[0], "ID", "Name")
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for _, raw := range values[1:] {
		row := toStrings(raw)
		id := h.get(row, "ID")
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, core.Category{
			ID:    id,
			Name:  h.get(row, "Name"),
			Color: h.get(row, "Color"),
			Icon:  h.get(row, "Icon"),
		})
	}
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	// zone-less cells are wall-clock times of the sheet owner
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
