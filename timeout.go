// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"fmt"
	"time"
)

// timeoutController owns the stream's low-level read timeout for the
// duration of one read loop.
//
// While the loop runs, each read is bounded by the heartbeat check interval,
// or by the caller's overall timeout when that is shorter, so a blocked read
// always returns in time to re-check heartbeat and deadline. When the loop
// exits the stream's default timeout is put back.
type timeoutController struct {
	checkInterval time.Duration
	fallback      time.Duration
}

func (tc timeoutController) interval(caller time.Duration) time.Duration {
	if caller > 0 {
		return min(tc.checkInterval, caller)
	}
	return tc.checkInterval
}

func (tc timeoutController) install(s Stream, caller time.Duration) error {
	if err := s.SetReadTimeout(tc.interval(caller)); err != nil {
		return fmt.Errorf("sioclient: install read timeout: %w", err)
	}
	return nil
}

// restore is a no-op once the stream has been dropped.
func (tc timeoutController) restore(s Stream) error {
	if s == nil {
		return nil
	}
	if err := s.SetReadTimeout(tc.fallback); err != nil {
		return fmt.Errorf("sioclient: restore read timeout: %w", err)
	}
	return nil
}
