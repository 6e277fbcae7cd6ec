package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookinghub/services"
	"bookinghub/services/logger"

	"github.com/robfig/cron/v3"
)

// Job là một sweep chạy định kỳ, mỗi lần chạy độc lập với lần trước
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (services.SweepReport, error)
}

type SchedulerOptions struct {
	Location *time.Location
	Logger   logger.Logger
	// Timeout giới hạn một lần chạy, 0 là không giới hạn
	Timeout time.Duration
}

// Scheduler sở hữu vòng đời của các sweep: Start, Stop và RunOnce để chạy đồng bộ
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	logger  logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	cl := cronLogger{log: opts.Logger}
	c := cron.New(
		cron.WithLocation(opts.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    c,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add đăng ký một job, phải gọi trước Start
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run func", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.run(s.runContext(), job) }); err != nil {
		return fmt.Errorf("schedule %s (%s): %w", job.Name, job.Spec, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	// Stop đã hủy context cũ nên mỗi lần Start cần context mới
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron.Start()
	s.logger.Info("scheduler started with %d jobs", len(s.jobs))
}

// Stop hủy các lần chạy đang dở và chờ chúng kết thúc
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	done := s.cron.Stop()
	s.mu.Unlock()

	// job vừa được kích hoạt cần đọc runContext, không giữ khóa khi chờ
	<-done.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// RunOnce chạy mọi job một lượt theo thứ tự đăng ký
func (s *Scheduler) RunOnce(ctx context.Context) []services.SweepReport {
	reports := make([]services.SweepReport, 0, len(s.jobs))
	for _, job := range s.jobs {
		reports = append(reports, s.run(ctx, job))
	}
	return reports
}

func (s *Scheduler) run(ctx context.Context, job Job) services.SweepReport {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	report, err := job.Run(ctx)
	if report.Name == "" {
		report.Name = job.Name
	}
	if err != nil {
		s.logger.Error("job %s failed after %s: %v", job.Name, time.Since(start), err)
		return report
	}
	if report.Transitioned > 0 || report.Notified > 0 || report.Failed > 0 {
		s.logger.Info("job %s: scanned=%d transitioned=%d notified=%d failed=%d",
			job.Name, report.Scanned, report.Transitioned, report.Notified, report.Failed)
	}
	return report
}

// DefaultJobs là các sweep của hệ thống đặt phòng, cùng một lịch chạy
func DefaultJobs(spec string, bookings *services.BookingService, coupons *services.CouponService) []Job {
	return []Job{
		{Name: "expire-unpaid", Spec: spec, Run: bookings.ExpireUnpaid},
		{Name: "checkin-request", Spec: spec, Run: bookings.RequestCheckIns},
		{Name: "no-show-complete", Spec: spec, Run: bookings.AutoCompleteNoShows},
		{Name: "checkout-request", Spec: spec, Run: bookings.RequestCheckOuts},
		{Name: "finalize", Spec: spec, Run: bookings.FinalizeCheckedOut},
		{Name: "refund-retry", Spec: spec, Run: bookings.RetryRefunds},
		{Name: "notification-retry", Spec: spec, Run: bookings.RetryNotifications},
		{Name: "coupon-expiry", Spec: "@every 1h", Run: coupons.DeactivateExpired},
	}
}

// cronLogger chuyển log của robfig/cron sang logger của ứng dụng
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
