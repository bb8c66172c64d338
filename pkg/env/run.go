package env

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/meow-stack/gentest/pkg/memfs"
)

type queuedTask struct {
	task      Task
	namespace string
}

// runQueue holds pending tasks bucketed by priority, FIFO within a bucket.
type runQueue struct {
	buckets [numPriorities][]queuedTask
}

func (q *runQueue) add(g Generator) {
	ns := g.Core().Namespace()
	for _, t := range g.Tasks() {
		if t.Run == nil {
			continue
		}
		p := t.Priority
		if p < 0 || p >= numPriorities {
			p = PriorityDefault
		}
		q.buckets[p] = append(q.buckets[p], queuedTask{task: t, namespace: ns})
	}
}

// next pops the first task of the lowest non-empty priority.
func (q *runQueue) next() (queuedTask, bool) {
	for p := range q.buckets {
		if len(q.buckets[p]) > 0 {
			t := q.buckets[p][0]
			q.buckets[p] = q.buckets[p][1:]
			return t, true
		}
	}
	return queuedTask{}, false
}

// peek returns the priority of the next task.
func (q *runQueue) peek() (Priority, bool) {
	for p := range q.buckets {
		if len(q.buckets[p]) > 0 {
			return Priority(p), true
		}
	}
	return 0, false
}

func (e *Environment) compose(namespace string, args []string, options map[string]any) (Generator, error) {
	g, err := e.Create(namespace, args, options)
	if err != nil {
		return nil, err
	}
	e.adapter.Output().Invoke(namespace)

	e.mu.Lock()
	if e.run != nil {
		e.run.add(g)
	} else {
		e.pending = append(e.pending, g)
	}
	e.mu.Unlock()

	e.logger.Debug("composed generator", "namespace", namespace)
	return g, nil
}

// Run executes g and every generator it composes. Tasks run one at a time
// in priority order. Staged files are committed once the conflicts stage
// is done, and again if later tasks stage more. A task error is returned
// unchanged; a panicking task's error value is returned as is.
func (e *Environment) Run(ctx context.Context, g Generator) error {
	q := &runQueue{}
	q.add(g)

	e.mu.Lock()
	for _, p := range e.pending {
		q.add(p)
	}
	e.pending = nil
	e.run = q
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.run = nil
		e.mu.Unlock()
	}()

	skipInstall := e.options.Bool(OptionSkipInstall)
	dirty := true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		next, ok := q.peek()
		e.mu.Unlock()

		if dirty && (!ok || next > PriorityConflicts) {
			if err := e.commit(); err != nil {
				return err
			}
			dirty = false
		}
		if !ok {
			return nil
		}

		e.mu.Lock()
		qt, _ := q.next()
		e.mu.Unlock()

		if qt.task.Priority <= PriorityConflicts {
			dirty = true
		}
		if qt.task.Priority == PriorityInstall && skipInstall {
			e.logger.Debug("skipping install task", "generator", qt.namespace, "task", qt.task.Name)
			continue
		}

		e.logger.Debug("running task",
			"generator", qt.namespace,
			"task", qt.task.Name,
			"priority", qt.task.Priority.String(),
		)
		if err := runTask(ctx, qt.task); err != nil {
			return err
		}
	}
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = perr
				return
			}
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
	}()
	return t.Run(ctx)
}

// commit flushes the store and reports each change on the adapter output.
func (e *Environment) commit() error {
	changes, err := e.store.Commit()
	out := e.adapter.Output()
	for _, c := range changes {
		rel, relErr := filepath.Rel(e.cwd, c.Path)
		if relErr != nil {
			rel = c.Path
		}
		switch c.Action {
		case memfs.ActionCreate:
			out.Create(rel)
		case memfs.ActionForce:
			if !e.options.Bool(OptionForce) {
				out.Conflict(rel)
			}
			out.Force(rel)
		case memfs.ActionIdentical:
			out.Identical(rel)
		case memfs.ActionDelete:
			out.Info("delete %s", rel)
		}
	}
	return err
}
