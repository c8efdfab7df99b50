package handler

import (
	"time"

	"github.com/longform/internal/service"
)

type pageviewTracker interface {
	TrackPageview(entryID uint, now time.Time) (service.PageviewResult, error)
}
