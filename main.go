package main

import (
	"errors"
	"io"
	"log"
	"syscall"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/corvidterm/corvid/config"
	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/keybindings"
	"github.com/corvidterm/corvid/parser"
	"github.com/corvidterm/corvid/render"
	"github.com/corvidterm/corvid/shell"
	"github.com/corvidterm/corvid/window"
)

const blinkInterval = 500 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	fg, bg, _ := cfg.Colors()

	win, err := window.NewWindow(window.Config{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  "Corvid",
	})
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer win.Destroy()

	renderer, err := render.NewRenderer(fg, bg, cfg.FontSize)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	width, height := win.GetFramebufferSize()
	cols, rows := renderer.CalculateGridSize(width, height)

	screen := grid.NewGrid(cols, rows, fg, bg, int(cfg.TabWidth))
	screen.SetBracketedPaste(cfg.BracketedPaste)

	term := parser.NewTerminal(screen)
	term.SetTitleHandler(win.SetTitle)

	session, err := shell.NewPtySession(cfg, uint16(cols), uint16(rows))
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	defer session.Close()

	win.GLFW().SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		win.SetViewport(width, height)
		cols, rows := renderer.CalculateGridSize(width, height)
		screen.Resize(cols, rows)
		if err := session.Resize(uint16(cols), uint16(rows)); err != nil {
			log.Printf("Failed to resize pty: %v", err)
		}
	})

	win.GLFW().SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}

		result := keybindings.TranslateKey(key, mods)
		switch result.Action {
		case keybindings.ActionExit:
			win.SetShouldClose(true)
		case keybindings.ActionToggleFullscreen:
			win.ToggleFullscreen()
		case keybindings.ActionPaste:
			clip := glfw.GetClipboardString()
			if clip == "" {
				return
			}
			data := keybindings.WrapPaste([]byte(clip), screen.BracketedPaste())
			if err := session.Send(data); err != nil {
				log.Printf("Failed to write to pty: %v", err)
			}
		case keybindings.ActionInput:
			if err := session.Send(result.Data); err != nil {
				log.Printf("Failed to write to pty: %v", err)
			}
		}
	})

	win.GLFW().SetCharModsCallback(func(_ *glfw.Window, char rune, mods glfw.ModifierKey) {
		if err := session.Send(keybindings.TranslateChar(char, mods)); err != nil {
			log.Printf("Failed to write to pty: %v", err)
		}
	})

	cursorOn := true
	lastBlink := time.Now()

	for !win.ShouldClose() {
		if err := session.Poll(term); err != nil {
			// EIO is the normal read failure once the child is gone
			if !errors.Is(err, io.EOF) && !errors.Is(err, syscall.EIO) {
				log.Printf("Failed to read from pty: %v", err)
			}
			break
		}
		if session.HasExited() {
			break
		}

		if time.Since(lastBlink) >= blinkInterval {
			cursorOn = !cursorOn
			lastBlink = time.Now()
		}

		width, height := win.GetFramebufferSize()
		view, cursor := screen.Snapshot()
		renderer.Draw(view, cursor, width, height, cursorOn)

		win.SwapBuffers()
		glfw.PollEvents()
	}
}
