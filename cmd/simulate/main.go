package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/app"
	"github.com/hackgods/ward-scheduling/internal/config"
)

type SimConfig struct {
	APIBaseURL      string
	Duration        time.Duration
	Workers         int
	AdmitRatio      float64
	DischargeRatio  float64
	ScheduleRatio   float64
	TransitionRatio float64
	ReadRatio       float64
	Nurses          int
	Rooms           int
	RoomCapacity    int
	Providers       int
}

type admission struct {
	room      string
	caregiver string
	patientID string
}

// DataPool tracks what the simulator created so later operations can act on it.
type DataPool struct {
	Rooms     map[string]string // room number -> nurse id
	RoomList  []string
	Providers []string

	mu           sync.RWMutex
	admissions   []admission
	appointments []string
}

func (dp *DataPool) AddAdmission(a admission) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.admissions = append(dp.admissions, a)
}

// TakeAdmission removes and returns a random admission.
func (dp *DataPool) TakeAdmission(rng *rand.Rand) (admission, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.admissions) == 0 {
		return admission{}, false
	}
	idx := rng.Intn(len(dp.admissions))
	a := dp.admissions[idx]
	dp.admissions[idx] = dp.admissions[len(dp.admissions)-1]
	dp.admissions = dp.admissions[:len(dp.admissions)-1]
	return a, true
}

func (dp *DataPool) AddAppointment(id string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (string, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return "", false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Admit     OperationMetrics
	Discharge OperationMetrics
	Schedule  OperationMetrics
	Cancel    OperationMetrics
	Complete  OperationMetrics
	ListAppts OperationMetrics
	ListRooms OperationMetrics
	Report    OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  *zap.Logger
	metrics Metrics
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		panic("failed to load base config: " + err.Error())
	}

	logger := app.NewLogger(baseCfg.Env).Named("simulate")
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	logger.Info("simulator starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Int("nurses", cfg.Nurses),
		zap.Int("rooms", cfg.Rooms),
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := sim.seed(ctx)
	if err != nil {
		logger.Fatal("seed ward", zap.Error(err))
	}
	sim.pool = pool

	logger.Info("seeded", zap.Int("rooms", len(pool.RoomList)), zap.Int("providers", len(pool.Providers)))

	// Run simulation
	sim.Run()

	// Print report
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:      getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:        getDuration("SIM_DURATION", 30*time.Second),
		Workers:         getInt("SIM_WORKERS", 10),
		AdmitRatio:      getFloat("SIM_ADMIT_RATIO", 0.25),
		DischargeRatio:  getFloat("SIM_DISCHARGE_RATIO", 0.15),
		ScheduleRatio:   getFloat("SIM_SCHEDULE_RATIO", 0.25),
		TransitionRatio: getFloat("SIM_TRANSITION_RATIO", 0.15),
		ReadRatio:       getFloat("SIM_READ_RATIO", 0.2),
		Nurses:          getInt("SIM_NURSES", 10),
		Rooms:           getInt("SIM_ROOMS", 40),
		RoomCapacity:    getInt("SIM_ROOM_CAPACITY", 4),
		Providers:       getInt("SIM_PROVIDERS", 8),
	}

	// Normalize ratios
	total := cfg.AdmitRatio + cfg.DischargeRatio + cfg.ScheduleRatio + cfg.TransitionRatio + cfg.ReadRatio
	if total > 0 {
		cfg.AdmitRatio /= total
		cfg.DischargeRatio /= total
		cfg.ScheduleRatio /= total
		cfg.TransitionRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Nurses <= 0 || cfg.Rooms <= 0 || cfg.Providers <= 0 {
		return fmt.Errorf("SIM_NURSES, SIM_ROOMS and SIM_PROVIDERS must be > 0")
	}
	if cfg.RoomCapacity <= 0 {
		return fmt.Errorf("SIM_ROOM_CAPACITY must be > 0")
	}
	return nil
}

// seed registers nurses and rooms through the API, binds every room to a
// nurse round-robin and cleans it so patients can be admitted right away.
func (s *Simulator) seed(ctx context.Context) (*DataPool, error) {
	faker := gofakeit.New(0)
	run := uuid.NewString()[:8]

	pool := &DataPool{Rooms: make(map[string]string)}

	nurses := make([]string, 0, s.config.Nurses)
	for i := 0; i < s.config.Nurses; i++ {
		id := fmt.Sprintf("nurse-%s-%03d", run, i)
		status, err := s.post(ctx, "/staff", "", map[string]string{
			"id":         id,
			"first_name": faker.FirstName(),
			"last_name":  faker.LastName(),
			"role":       "nurse",
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("create nurse: %w", err)
		}
		if status != http.StatusCreated {
			return nil, fmt.Errorf("create nurse %s: status %d", id, status)
		}
		nurses = append(nurses, id)
	}

	for i := 0; i < s.config.Rooms; i++ {
		number := fmt.Sprintf("%s-%03d", run, 100+i)
		nurse := nurses[i%len(nurses)]

		status, err := s.post(ctx, "/rooms", "", map[string]any{"number": number, "capacity": s.config.RoomCapacity}, nil)
		if err != nil || status != http.StatusCreated {
			return nil, fmt.Errorf("create room %s: status %d: %v", number, status, err)
		}

		status, err = s.post(ctx, "/rooms/"+number+"/bind", "", map[string]string{"caregiver_id": nurse}, nil)
		if err != nil || status != http.StatusOK {
			return nil, fmt.Errorf("bind room %s: status %d: %v", number, status, err)
		}

		status, err = s.post(ctx, "/rooms/"+number+"/clean", nurse, nil, nil)
		if err != nil || status != http.StatusOK {
			return nil, fmt.Errorf("clean room %s: status %d: %v", number, status, err)
		}

		pool.Rooms[number] = nurse
		pool.RoomList = append(pool.RoomList, number)
	}

	for i := 0; i < s.config.Providers; i++ {
		pool.Providers = append(pool.Providers, "Dr. "+faker.LastName())
	}

	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation", zap.Duration("duration", s.config.Duration), zap.Int("workers", s.config.Workers))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(0)

	c := s.config
	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < c.AdmitRatio:
				s.doAdmit(ctx, rng, faker)
			case r < c.AdmitRatio+c.DischargeRatio:
				s.doDischarge(ctx, rng)
			case r < c.AdmitRatio+c.DischargeRatio+c.ScheduleRatio:
				s.doSchedule(ctx, rng, faker)
			case r < c.AdmitRatio+c.DischargeRatio+c.ScheduleRatio+c.TransitionRatio:
				s.doTransition(ctx, rng)
			default:
				s.doRead(ctx, rng)
			}
		}
	}
}

func (s *Simulator) doAdmit(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	room := s.pool.RoomList[rng.Intn(len(s.pool.RoomList))]
	nurse := s.pool.Rooms[room]
	patientID := uuid.NewString()

	start := time.Now()
	status, err := s.post(ctx, "/rooms/"+room+"/patients", nurse, map[string]string{
		"patient_id":   patientID,
		"patient_name": faker.Name(),
	}, nil)
	latency := time.Since(start)

	success := err == nil && status == http.StatusCreated
	if success {
		s.pool.AddAdmission(admission{room: room, caregiver: nurse, patientID: patientID})
	}
	s.metrics.Admit.Record(latency, success, status == http.StatusConflict)
}

func (s *Simulator) doDischarge(ctx context.Context, rng *rand.Rand) {
	a, ok := s.pool.TakeAdmission(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, err := s.do(ctx, http.MethodDelete, "/rooms/"+a.room+"/patients/"+url.PathEscape(a.patientID), a.caregiver, nil, nil)
	latency := time.Since(start)

	s.metrics.Discharge.Record(latency, err == nil && status == http.StatusOK, status == http.StatusConflict)
}

var reasons = []string{"follow-up", "blood test results", "post-op review", "chest pain", "vaccination"}

func (s *Simulator) doSchedule(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	provider := s.pool.Providers[rng.Intn(len(s.pool.Providers))]
	day := time.Now().UTC().AddDate(0, 0, 1+rng.Intn(5))
	minutes := 8*60 + rng.Intn(120)*5 // 08:00 to 17:55

	body := map[string]any{
		"patient_id":      uuid.NewString(),
		"patient_name":    faker.Name(),
		"provider":        provider,
		"date":            day.Format("2006-01-02"),
		"time":            fmt.Sprintf("%02d:%02d", minutes/60, minutes%60),
		"reason":          reasons[faker.Number(0, len(reasons)-1)],
		"check_conflicts": true,
	}
	switch rng.Intn(3) {
	case 0:
		body["kind"] = "in_person"
		body["facility"] = faker.City() + " Health Center"
	case 1:
		body["kind"] = "telephonic"
		body["contact_phone"] = faker.Phone()
	default:
		body["kind"] = "emergency"
		body["priority"] = []string{"high", "medium", "low"}[rng.Intn(3)]
	}

	var created struct {
		ID string `json:"id"`
	}

	start := time.Now()
	status, err := s.post(ctx, "/appointments", "", body, &created)
	latency := time.Since(start)

	success := err == nil && status == http.StatusCreated
	if success && created.ID != "" {
		s.pool.AddAppointment(created.ID)
	}
	s.metrics.Schedule.Record(latency, success, status == http.StatusConflict)
}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	action, metrics := "cancel", &s.metrics.Cancel
	if rng.Intn(2) == 0 {
		action, metrics = "complete", &s.metrics.Complete
	}

	start := time.Now()
	status, err := s.post(ctx, "/appointments/"+id+"/"+action, "", nil, nil)
	latency := time.Since(start)

	metrics.Record(latency, err == nil && status == http.StatusOK, status == http.StatusConflict)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	var (
		path    string
		metrics *OperationMetrics
	)
	switch rng.Intn(3) {
	case 0:
		path, metrics = "/appointments", &s.metrics.ListAppts
	case 1:
		path, metrics = "/rooms", &s.metrics.ListRooms
	default:
		path, metrics = "/rooms/report", &s.metrics.Report
	}

	start := time.Now()
	status, err := s.do(ctx, http.MethodGet, path, "", nil, nil)
	latency := time.Since(start)

	metrics.Record(latency, err == nil && status == http.StatusOK, false)
}

func (s *Simulator) post(ctx context.Context, path, caregiver string, body, out any) (int, error) {
	return s.do(ctx, http.MethodPost, path, caregiver, body, out)
}

// do sends a JSON request and decodes a successful JSON response into out
// when out is non-nil.
func (s *Simulator) do(ctx context.Context, method, path, caregiver string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if caregiver != "" {
		req.Header.Set("X-Caregiver-ID", caregiver)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Rooms: %d (capacity %d)\n", s.config.Rooms, s.config.RoomCapacity)
	fmt.Println()

	printOperationReport("Admit patient", &s.metrics.Admit)
	printOperationReport("Discharge patient", &s.metrics.Discharge)
	printOperationReport("Schedule appointment", &s.metrics.Schedule)
	printOperationReport("Cancel appointment", &s.metrics.Cancel)
	printOperationReport("Complete appointment", &s.metrics.Complete)
	printOperationReport("List appointments", &s.metrics.ListAppts)
	printOperationReport("List rooms", &s.metrics.ListRooms)
	printOperationReport("Rooms report", &s.metrics.Report)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
