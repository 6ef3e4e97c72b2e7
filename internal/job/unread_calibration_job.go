package job

import (
	"Procura/internal/pkg/chatstore"
	"Procura/internal/pkg/consts"
	"Procura/internal/pkg/logger"
	"Procura/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// UnreadCalibrationJob 定期重算未读计数，多实例部署下靠 Redis 锁保证单点执行
type UnreadCalibrationJob struct {
	store *chatstore.Store
}

func NewUnreadCalibrationJob(store *chatstore.Store) *UnreadCalibrationJob {
	return &UnreadCalibrationJob{store: store}
}

func (s *UnreadCalibrationJob) Run() {
	traceID := "job-unread-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	uuidStr := uuid.NewString()
	lock, err := redis.TryLock(ctx, consts.CalibrationLock, uuidStr, 10*time.Minute, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire calibration lock error", "err", err)
		return
	}
	if !lock {
		return
	}
	defer redis.UnLock(ctx, consts.CalibrationLock, uuidStr)

	fixed, err := s.store.CalibrateUnread(ctx)
	if err != nil {
		log.ErrorContext(ctx, "calibrate unread counts error", "err", err)
		return
	}

	log.InfoContext(ctx, "unread calibration finished", "fixed", fixed)
}
