package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-go-golems/msghub/pkg/ui"
)

// accessMsg carries a closure to run on the bubbletea update loop, which is
// the chat UI's exclusive execution context.
type accessMsg struct {
	fn func()
}

// teaExecutor adapts a tea.Program to ui.Executor: Access posts the
// callback into the program's message loop, so it runs serialized with
// every other Update. Work scheduled before the program is set is buffered
// and flushed by SetProgram.
type teaExecutor struct {
	mu      sync.Mutex
	p       *tea.Program
	pending []func()
	dead    map[int]bool
	hooks   map[int][]func()
}

func newTeaExecutor() *teaExecutor {
	return &teaExecutor{
		dead:  map[int]bool{},
		hooks: map[int][]func(){},
	}
}

func (e *teaExecutor) SetProgram(p *tea.Program) {
	e.mu.Lock()
	e.p = p
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, fn := range pending {
		p.Send(accessMsg{fn: fn})
	}
}

func (e *teaExecutor) Access(u ui.UI, fn func()) {
	e.mu.Lock()
	if e.dead[u.ID()] {
		e.mu.Unlock()
		return
	}
	p := e.p
	if p == nil {
		e.pending = append(e.pending, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	p.Send(accessMsg{fn: fn})
}

func (e *teaExecutor) OnDetach(u ui.UI, hook func()) {
	e.mu.Lock()
	if e.dead[u.ID()] {
		e.mu.Unlock()
		hook()
		return
	}
	e.hooks[u.ID()] = append(e.hooks[u.ID()], hook)
	e.mu.Unlock()
}

// Detach marks u permanently discarded and fires its hooks once. Called
// after the program exits.
func (e *teaExecutor) Detach(u ui.UI) {
	e.mu.Lock()
	if e.dead[u.ID()] {
		e.mu.Unlock()
		return
	}
	e.dead[u.ID()] = true
	hooks := e.hooks[u.ID()]
	delete(e.hooks, u.ID())
	e.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}
