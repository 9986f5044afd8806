package common

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type FailoverHandler interface {
	OnSuccess()
	OnFailure() (isDisabled bool)
	IsDisabled() bool
}

// FailoverState is a snapshot of a GeneralFailoverHandler.
type FailoverState struct {
	Failures            int
	DisableCycles       int
	DisableUntil        time.Time
	PermanentlyDisabled bool
}

type GeneralFailoverHandler struct {
	// Logger already has component context from initialization
	logger *logrus.Entry
	now    func() time.Time

	conf                      FailoverConfig
	failures                  int
	currentCooldownMultiplier int
	disableCycleCount         int
	disableUntil              time.Time
	isPermanentlyDisabled     bool
	mu                        sync.Mutex
}

func NewGeneralFailoverHandler(conf FailoverConfig, logger *logrus.Entry) (h *GeneralFailoverHandler) {
	h = &GeneralFailoverHandler{
		logger: logger,
		now:    time.Now,
		conf:   conf,
	}

	// It's safe here
	h.resetState()
	return
}

func (h *GeneralFailoverHandler) OnSuccess() {
	h.mu.Lock()
	if h.failures > 0 || h.currentCooldownMultiplier > 0 || h.disableCycleCount > 0 {
		h.resetState()
	}
	h.mu.Unlock()
}

// resetState resets all failover states.
// ATTENTION: NOT A THREAD SAFE OPERATION
func (h *GeneralFailoverHandler) resetState() {
	h.failures = 0
	h.currentCooldownMultiplier = 0
	h.disableCycleCount = 0
	h.isPermanentlyDisabled = false
	h.disableUntil = time.Time{}
	h.logger.Debug("failover state reset")
}

// OnFailure records a hard failure. It returns true if the detector has just
// entered a disabled state (cooldown or permanent) because of it.
func (h *GeneralFailoverHandler) OnFailure() (isDisabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures += 1
	h.logger.Warnf("new failure. Current failures: %d/%d", h.failures, h.conf.MaxFailures)
	if h.failures < h.conf.MaxFailures {
		return
	}

	h.failures = 0
	h.currentCooldownMultiplier += 1
	h.disableCycleCount += 1
	if h.disableCycleCount >= h.conf.MaxDisableCycles {
		h.logger.Errorf("reached maximum disable cycles: %d. Detector permanently disabled",
			h.conf.MaxDisableCycles)
		h.isPermanentlyDisabled = true
		return true
	}

	h.disableUntil = h.now().Add(
		time.Duration(h.currentCooldownMultiplier*h.conf.CooldownBaseSec) * time.Second)
	h.logger.Warnf("reached maximum failures, disable it until %s",
		h.disableUntil.Local().Format(time.RFC3339Nano))
	return true
}

func (h *GeneralFailoverHandler) IsDisabled() bool {
	h.mu.Lock()
	ret := h.isPermanentlyDisabled || h.now().Before(h.disableUntil)
	h.mu.Unlock()
	return ret
}

func (h *GeneralFailoverHandler) State() FailoverState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return FailoverState{
		Failures:            h.failures,
		DisableCycles:       h.disableCycleCount,
		DisableUntil:        h.disableUntil,
		PermanentlyDisabled: h.isPermanentlyDisabled,
	}
}
