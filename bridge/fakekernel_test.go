// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

type inspectCall struct {
	code       string
	cursorPos  int
	detail     int
	useControl bool
}

// fakeKernel is a scripted Kernel. Tests push kernel messages into
// its inboxes directly, or install onExecute/onInspect to answer
// requests as they are sent.
type fakeKernel struct {
	onExecute func(k *fakeKernel, id, code string)
	onInspect func(k *fakeKernel, id string, call inspectCall)

	executeErr   error
	interruptErr error
	pauseErr     error
	resumeErr    error
	restartErr   error
	pausePanics  bool

	// executions receives the msg_id of every execute_request.
	executions chan string

	wake     chan struct{}
	done     chan struct{}
	exitOnce sync.Once

	mu         sync.Mutex
	inboxes    map[jupyter.Channel][]*jupyter.Message
	nextID     int
	executed   []string
	inspects   []inspectCall
	inputs     []string
	interrupts int
	pauses     int
	resumes    int
	restarts   int
	shutdowns  int
	exitErr    error
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		onExecute:  answerExecute,
		executions: make(chan string, 64),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		inboxes:    make(map[jupyter.Channel][]*jupyter.Message),
	}
}

func (k *fakeKernel) newID(prefix string) string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextID++
	return fmt.Sprintf("%s-%d", prefix, k.nextID)
}

func (k *fakeKernel) Execute(code string, allowStdin bool) (string, error) {
	if k.executeErr != nil {
		return "", k.executeErr
	}
	id := k.newID("execute")
	k.mu.Lock()
	k.executed = append(k.executed, code)
	k.mu.Unlock()
	k.executions <- id
	if k.onExecute != nil {
		k.onExecute(k, id, code)
	}
	return id, nil
}

func (k *fakeKernel) Inspect(code string, cursorPos, detail int, useControl bool) (string, error) {
	id := k.newID("inspect")
	call := inspectCall{code: code, cursorPos: cursorPos, detail: detail, useControl: useControl}
	k.mu.Lock()
	k.inspects = append(k.inspects, call)
	k.mu.Unlock()
	if k.onInspect != nil {
		k.onInspect(k, id, call)
	}
	return id, nil
}

func (k *fakeKernel) SendInput(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.inputs = append(k.inputs, text)
	return nil
}

func (k *fakeKernel) Poll(channel jupyter.Channel) (*jupyter.Message, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	inbox := k.inboxes[channel]
	if len(inbox) == 0 {
		return nil, false
	}
	k.inboxes[channel] = inbox[1:]
	return inbox[0], true
}

func (k *fakeKernel) Wake() <-chan struct{} { return k.wake }

func (k *fakeKernel) Done() <-chan struct{} { return k.done }

func (k *fakeKernel) Err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.exitErr
}

func (k *fakeKernel) Interrupt() error {
	k.mu.Lock()
	k.interrupts++
	k.mu.Unlock()
	return k.interruptErr
}

func (k *fakeKernel) Pause() error {
	if k.pausePanics {
		panic("pause exploded")
	}
	k.mu.Lock()
	k.pauses++
	k.mu.Unlock()
	return k.pauseErr
}

func (k *fakeKernel) Resume() error {
	k.mu.Lock()
	k.resumes++
	k.mu.Unlock()
	return k.resumeErr
}

func (k *fakeKernel) Restart(ctx context.Context) error {
	k.mu.Lock()
	k.restarts++
	k.mu.Unlock()
	return k.restartErr
}

func (k *fakeKernel) Shutdown() {
	k.mu.Lock()
	k.shutdowns++
	k.mu.Unlock()
	k.exit(nil)
}

// die simulates the kernel process exiting on its own.
func (k *fakeKernel) die(err error) {
	k.exit(err)
	k.poke()
}

func (k *fakeKernel) exit(err error) {
	k.exitOnce.Do(func() {
		k.mu.Lock()
		k.exitErr = err
		k.mu.Unlock()
		close(k.done)
	})
}

func (k *fakeKernel) poke() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// push queues a message on channel as if the kernel had sent it in
// answer to parent.
func (k *fakeKernel) push(channel jupyter.Channel, parent, msgType string, content any) {
	raw, err := json.Marshal(content)
	if err != nil {
		panic(err)
	}
	message := &jupyter.Message{
		Header:       jupyter.Header{MsgID: k.newID("reply"), MsgType: msgType},
		ParentHeader: jupyter.Header{MsgID: parent},
		Content:      raw,
	}
	k.mu.Lock()
	k.inboxes[channel] = append(k.inboxes[channel], message)
	k.mu.Unlock()
	k.poke()
}

func (k *fakeKernel) publish(parent, msgType string, content any) {
	k.push(jupyter.IOPub, parent, msgType, content)
}

// finish reports idle for parent and sends an ok execute_reply.
func (k *fakeKernel) finish(parent string) {
	k.publish(parent, jupyter.MsgStatus, jupyter.Status{ExecutionState: "idle"})
	k.push(jupyter.Shell, parent, jupyter.MsgExecuteReply, jupyter.ExecuteReply{Status: "ok", ExecutionCount: 1})
}

func (k *fakeKernel) counts() (interrupts, pauses, resumes, restarts, shutdowns int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.interrupts, k.pauses, k.resumes, k.restarts, k.shutdowns
}

func (k *fakeKernel) executedCode() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.executed...)
}

func (k *fakeKernel) sentInputs() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.inputs...)
}

func (k *fakeKernel) inspectCalls() []inspectCall {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]inspectCall(nil), k.inspects...)
}

// answerExecute behaves like a tiny Python: it prints for print('x'),
// evaluates 1+1, and completes everything else silently.
func answerExecute(k *fakeKernel, id, code string) {
	k.publish(id, jupyter.MsgStatus, jupyter.Status{ExecutionState: "busy"})
	switch code {
	case "print('x')":
		k.publish(id, jupyter.MsgStream, jupyter.Stream{Name: "stdout", Text: "x\n"})
	case "1+1":
		k.publish(id, jupyter.MsgExecuteResult, jupyter.DisplayData{
			Data:           jupyter.MimeBundle{"text/plain": "2"},
			ExecutionCount: 1,
		})
	case "1/0":
		k.publish(id, jupyter.MsgError, jupyter.Error{
			Ename:     "ZeroDivisionError",
			Evalue:    "division by zero",
			Traceback: []string{"Traceback (most recent call last):", "ZeroDivisionError: division by zero"},
		})
	}
	k.finish(id)
}

// holdExecute answers nothing; the test drives completion.
func holdExecute(k *fakeKernel, id, code string) {}
