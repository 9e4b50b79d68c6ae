// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import "github.com/anchorlock/go-anchorlock/pkg/audit"

// Option configures a container at construction time.
type Option func(*options)

type options struct {
	recorder audit.Recorder
}

func buildOptions(opts []Option) options {
	o := options{recorder: audit.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRecorder routes the container's audit entries to r instead of
// the process-wide log.
func WithRecorder(r audit.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}
