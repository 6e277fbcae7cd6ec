package utils

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "Asia/Ho_Chi_Minh"

	// InputLayout: DD-MM-YYYY HH:mm:ss
	InputLayout = "02-01-2006 15:04:05"
	// OutputLayout: DD/MM/YYYY HH:mm:ss
	OutputLayout = "02/01/2006 15:04:05"
)

var (
	locMu  sync.RWMutex
	appLoc = mustLoad(DefaultTimezone)
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// SetLocation đổi múi giờ hiển thị của toàn ứng dụng
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	locMu.Lock()
	appLoc = loc
	locMu.Unlock()
	return nil
}

func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return appLoc
}

// ParseLocal đọc chuỗi DD-MM-YYYY HH:mm:ss theo giờ địa phương, trả về UTC
func ParseLocal(value string) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, value, Location())
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatLocal hiển thị một thời điểm theo DD/MM/YYYY HH:mm:ss
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location()).Format(OutputLayout)
}

func FormatLocalPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatLocal(*t)
}
