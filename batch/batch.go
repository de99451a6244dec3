/*
 * Batch: concurrent fan-out over independent vobject sources (spec
 * component K, expansion), one Reader per source via errgroup, since
 * spec.md §5 states two instances on independent streams are fully
 * independent.
 *
 * (c) 2012 Bernd Fix   >Y<
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or (at
 * your option) any later version.
 *
 * This program is distributed in the hope that it will be useful, but
 * WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package batch runs many independent vobject readers concurrently,
// one goroutine per source, each driving its own reader.Reader to
// completion against its own io.Reader.
package batch

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/bfix/vobject/dialect"
	"github.com/bfix/vobject/logger"
	"github.com/bfix/vobject/property"
	"github.com/bfix/vobject/reader"
)

// Source is one independent input stream and the listener that
// receives its events.
type Source struct {
	Name     string
	Reader   io.Reader
	Listener reader.Listener
}

// Result is the outcome of parsing one Source.
type Result struct {
	Name string
	Err  error
}

// Options configures ParseAll. It embeds reader.Options, applied
// identically to every source, and adds FailFast: when true, the
// first source to fail cancels the others' readers at their next
// between-properties check point (spec §5's "no implicit yielding"
// within a single instance still holds; only the boundary between
// properties is a cancellation point).
type Options struct {
	reader.Options
	FailFast bool
}

// ParseAll runs one reader.Reader per Source concurrently and returns
// one Result per source, in the same order as sources. The returned
// error is non-nil only when FailFast is set and at least one source
// failed; Results are always fully populated regardless.
func ParseAll(ctx context.Context, sources []Source, opts Options) ([]Result, error) {
	results := make([]Result, len(sources))
	eg, gctx := errgroup.WithContext(ctx)
	for i := range sources {
		i := i
		src := sources[i]
		eg.Go(func() error {
			logger.Printf(logger.DBG, "[batch] starting source %q\n", src.Name)
			err := parseOne(gctx, src, opts)
			if err != nil {
				logger.Printf(logger.WARN, "[batch] source %q failed: %s\n", src.Name, err.Error())
			}
			results[i] = Result{Name: src.Name, Err: err}
			if opts.FailFast && err != nil {
				return err
			}
			return nil
		})
	}
	err := eg.Wait()
	return results, err
}

// parseOne drives one Reader to completion, re-entering Parse after
// every cooperative stop until end-of-stream, unless the group context
// is canceled first.
func parseOne(ctx context.Context, src Source, opts Options) error {
	tracked := &eofTrackingReader{r: src.Reader}
	listener := &cancelingListener{inner: src.Listener, ctx: ctx}
	rd := reader.New(tracked, listener, opts.Options)
	for {
		if err := rd.Parse(); err != nil {
			return err
		}
		if tracked.eof {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// eofTrackingReader remembers whether the wrapped reader has reported
// io.EOF, distinguishing "Parse stopped because the stream ended" from
// "Parse stopped because a listener (or cancelingListener) called
// Context.Stop".
type eofTrackingReader struct {
	r   io.Reader
	eof bool
}

func (e *eofTrackingReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		e.eof = true
	}
	return n, err
}

// cancelingListener forwards every event to inner, then requests the
// reader stop as soon as the group context is canceled. Since every
// event is delivered from within the reader's between-properties
// check point, this observes cancellation at the earliest opportunity
// without interrupting a property mid-character.
type cancelingListener struct {
	inner reader.Listener
	ctx   context.Context
}

func (c *cancelingListener) OnBegin(component string, ctx *reader.Context) {
	c.inner.OnBegin(component, ctx)
	c.checkCancel(ctx)
}

func (c *cancelingListener) OnEnd(component string, ctx *reader.Context) {
	c.inner.OnEnd(component, ctx)
	c.checkCancel(ctx)
}

func (c *cancelingListener) OnVersion(component, version string, d dialect.Dialect, ctx *reader.Context) {
	c.inner.OnVersion(component, version, d, ctx)
	c.checkCancel(ctx)
}

func (c *cancelingListener) OnProperty(p *property.Property, ctx *reader.Context) {
	c.inner.OnProperty(p, ctx)
	c.checkCancel(ctx)
}

func (c *cancelingListener) OnWarning(w reader.Warning, ctx *reader.Context) {
	c.inner.OnWarning(w, ctx)
	c.checkCancel(ctx)
}

func (c *cancelingListener) checkCancel(ctx *reader.Context) {
	if c.ctx.Err() != nil {
		ctx.Stop()
	}
}
