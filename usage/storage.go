package usage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MonthlyUsage counts analysis activity for one month.
type MonthlyUsage struct {
	Analyses       int       `json:"analyses"`
	Fallbacks      int       `json:"fallbacks"`
	MeasuredVitals int       `json:"measured_vitals"`
	Errors         int       `json:"errors"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Storage handles persistent storage of usage counters.
type Storage struct {
	mutex       sync.RWMutex
	usage       map[string]*MonthlyUsage // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
}

// NewStorage creates a usage storage instance rooted at dataDir.
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		usage:       make(map[string]*MonthlyUsage),
		filePath:    filepath.Join(dataDir, "usage.json"),
		writeBuffer: make(chan struct{}, 1),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.usage)
}

// save writes the counters atomically via a temp file rename.
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.usage)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// backgroundWriter handles periodic and requested writes to disk.
func (s *Storage) backgroundWriter() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			if err := s.save(); err != nil {
				slog.Warn("usage save failed", "error", err)
			}
		case <-ticker.C:
			if err := s.save(); err != nil {
				slog.Warn("usage save failed", "error", err)
			}
		}
	}
}

func currentMonth() string {
	return time.Now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed.
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// Write already pending.
	}
}

// TrackAnalysis records one completed analysis and how it degraded.
func (s *Storage) TrackAnalysis(usedFallback, measuredVitals bool) {
	s.increment(func(u *MonthlyUsage) {
		u.Analyses++
		if usedFallback {
			u.Fallbacks++
		}
		if measuredVitals {
			u.MeasuredVitals++
		}
	})
}

// TrackError records one failed analysis request.
func (s *Storage) TrackError() {
	s.increment(func(u *MonthlyUsage) {
		u.Errors++
	})
}

func (s *Storage) increment(apply func(*MonthlyUsage)) {
	month := currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	u, exists := s.usage[month]
	if !exists {
		u = &MonthlyUsage{}
		s.usage[month] = u
	}

	apply(u)
	u.LastUpdated = time.Now()

	if time.Since(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = time.Now()
	}
}

// GetCurrentUsage returns counters for the current month.
func (s *Storage) GetCurrentUsage() MonthlyUsage {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if u, exists := s.usage[currentMonth()]; exists {
		return *u
	}
	return MonthlyUsage{}
}

// GetMonthlyUsage returns counters for a specific "YYYY-MM" month.
func (s *Storage) GetMonthlyUsage(yearMonth string) (MonthlyUsage, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if u, exists := s.usage[yearMonth]; exists {
		return *u, true
	}
	return MonthlyUsage{}, false
}

// GetAllMonths returns every month with counters, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.usage))
	for month := range s.usage {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Cleanup keeps only the current and previous month of counters.
func (s *Storage) Cleanup() {
	now := time.Now()
	current := now.Format("2006-01")
	previous := now.AddDate(0, -1, 0).Format("2006-01")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key := range s.usage {
		if key != current && key != previous {
			delete(s.usage, key)
		}
	}

	s.requestWrite()
}

// Shutdown flushes counters to disk.
func (s *Storage) Shutdown() error {
	return s.save()
}
