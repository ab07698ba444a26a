package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics содержит метрики процесса для /health
type ServerMetrics struct {
	StartTime time.Time
}

// NewServerMetrics создает новый экземпляр метрик
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		StartTime: time.Now(),
	}
}

// HealthReport описывает ответ /health
type HealthReport struct {
	Status     string      `json:"status"`
	Time       int64       `json:"time"`
	Uptime     string      `json:"uptime"`
	MemoryMB   float64     `json:"memory_mb"`
	CPUPercent float64     `json:"cpu_percent"`
	Memory     MemoryStats `json:"memory"`
}

// MemoryStats содержит выдержку из runtime.MemStats
type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	Goroutines   int     `json:"goroutines"`
}

// Health собирает отчёт о состоянии. Ошибка CPU-метрики не делает
// сервис нездоровым: поле просто остаётся нулевым.
func (sm *ServerMetrics) Health() HealthReport {
	cpuPercent, _ := sm.GetCPUUsage()
	mem := sm.GetMemoryStats()
	return HealthReport{
		Status:     "ok",
		Time:       time.Now().Unix(),
		Uptime:     sm.GetUptime(),
		MemoryMB:   mem.AllocMB,
		CPUPercent: cpuPercent,
		Memory:     mem,
	}
}

// GetUptime возвращает время работы сервера
func (sm *ServerMetrics) GetUptime() string {
	return formatUptime(time.Since(sm.StartTime))
}

func formatUptime(d time.Duration) string {
	total := int(d.Seconds())
	days := total / 86400
	hours := total / 3600 % 24
	minutes := total / 60 % 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetCPUUsage возвращает использование CPU процессом в процентах.
// Если метрику процесса получить нельзя, отдаёт системную.
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if pct, err := proc.CPUPercent(); err == nil {
			return pct, nil
		}
	}

	pcts, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, nil
	}
	return pcts[0], nil
}

// GetMemoryStats возвращает статистику памяти в MB
func (sm *ServerMetrics) GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const mb = 1024 * 1024
	return MemoryStats{
		AllocMB:      float64(m.Alloc) / mb,
		TotalAllocMB: float64(m.TotalAlloc) / mb,
		SysMB:        float64(m.Sys) / mb,
		HeapAllocMB:  float64(m.HeapAlloc) / mb,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// domainMetrics содержит счётчики карт и валидаций
type domainMetrics struct {
	validations   *prometheus.CounterVec
	offending     prometheus.Counter
	mapsSaved     prometheus.Counter
	mapsDeleted   prometheus.Counter
	mapsGenerated prometheus.Counter
}

func newDomainMetrics(reg prometheus.Registerer) (*domainMetrics, error) {
	dm := &domainMetrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "validations_total",
			Help:      "Проверки карт по результату.",
		}, []string{"result"}),
		offending: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "offending_bricks_total",
			Help:      "Кирпичи, отмеченные валидатором.",
		}),
		mapsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "maps_saved_total",
			Help:      "Сохранённые карты.",
		}),
		mapsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "maps_deleted_total",
			Help:      "Удалённые карты.",
		}),
		mapsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "maps_generated_total",
			Help:      "Сгенерированные карты.",
		}),
	}

	for _, c := range []prometheus.Collector{dm.validations, dm.offending, dm.mapsSaved, dm.mapsDeleted, dm.mapsGenerated} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register api metrics: %w", err)
		}
	}
	return dm, nil
}

func (dm *domainMetrics) observeValidation(valid bool, offending int) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	dm.validations.WithLabelValues(result).Inc()
	dm.offending.Add(float64(offending))
}
