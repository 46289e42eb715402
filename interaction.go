// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"fmt"
)

type PromptKind uint8

const (
	// PromptRequireConfirmation asks the operator to approve or reject.
	PromptRequireConfirmation PromptKind = iota + 1
)

func (k PromptKind) String() string {
	switch k {
	case PromptRequireConfirmation:
		return "RequireConfirmation"
	default:
		return fmt.Sprintf("PromptKind(%d)", uint8(k))
	}
}

// Prompt is shown on the device while an exchange waits for the operator.
// Every prompt has its own ID and is answered through Press.
type Prompt struct {
	ID          uint64      `cbor:"id"`
	Instruction Instruction `cbor:"instruction"`
	Kind        PromptKind  `cbor:"kind"`

	presses chan<- ButtonPress
	done    <-chan struct{}
}

// Press delivers button to the device showing the prompt. It blocks until
// the device reads the press and reports false once the device stopped
// waiting for this prompt, so a late press never answers a later prompt.
func (p Prompt) Press(button ButtonPress) bool {
	if p.presses == nil {
		return false
	}
	select {
	case p.presses <- button:
		return true
	case <-p.done:
		return false
	}
}

func (p Prompt) detached() Prompt {
	p.presses = nil
	p.done = nil
	return p
}

type ButtonPress uint8

const (
	ButtonLeftReject ButtonPress = iota + 1
	ButtonRightAccept
	ButtonBothNavigate
)

func (b ButtonPress) String() string {
	switch b {
	case ButtonLeftReject:
		return "LeftReject"
	case ButtonRightAccept:
		return "RightAccept"
	case ButtonBothNavigate:
		return "BothNavigate"
	default:
		return fmt.Sprintf("ButtonPress(%d)", uint8(b))
	}
}

// Interaction is a prompt together with the button press that settled it.
type Interaction struct {
	Prompt Prompt      `cbor:"prompt"`
	Button ButtonPress `cbor:"button"`
}

func (i Interaction) Accepted() bool {
	return i.Button == ButtonRightAccept
}

// EmulatedIO connects an emulated device to a simulated operator. The device
// posts on Prompts and the operator answers each prompt with Prompt.Press.
type EmulatedIO struct {
	Prompts chan Prompt
}

func NewEmulatedIO() *EmulatedIO {
	return &EmulatedIO{
		Prompts: make(chan Prompt, 1),
	}
}

// Respond answers every prompt with the button chosen by decide until ctx is
// done.
func (io *EmulatedIO) Respond(ctx context.Context, decide func(Prompt) ButtonPress) {
	for {
		select {
		case <-ctx.Done():
			return
		case prompt := <-io.Prompts:
			prompt.Press(decide(prompt))
		}
	}
}

// AlwaysAccept approves every prompt.
func AlwaysAccept(Prompt) ButtonPress { return ButtonRightAccept }

// AlwaysReject declines every prompt.
func AlwaysReject(Prompt) ButtonPress { return ButtonLeftReject }
