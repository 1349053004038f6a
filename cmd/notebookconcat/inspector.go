package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/width"

	"github.com/dshills/notebookconcat/internal/concat"
)

// inspector is a small tcell terminal UI that renders the engine's current
// cells: one block per cell, colored by cell index, showing the cell id and
// its concat and real line:character ranges. It redraws on every outbound
// change event.
type inspector struct {
	screen tcell.Screen
	engine *concat.Engine
	events chan concat.OutboundChangeEvent
}

func newInspector(engine *concat.Engine) (*inspector, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &inspector{
		screen: screen,
		engine: engine,
		events: make(chan concat.OutboundChangeEvent, 64),
	}, nil
}

// Handle implements dispatch.Handler: each accepted mutation nudges the
// redraw loop.
func (insp *inspector) Handle(ctx context.Context, event any) error {
	ev, ok := event.(concat.OutboundChangeEvent)
	if !ok {
		return nil
	}
	select {
	case insp.events <- ev:
	default:
	}
	return nil
}

func (insp *inspector) run() error {
	if err := insp.screen.Init(); err != nil {
		return err
	}
	defer insp.screen.Fini()

	insp.draw()

	quit := make(chan struct{})
	tcellEvents := make(chan tcell.Event, 8)
	go insp.screen.ChannelEvents(tcellEvents, quit)

	for {
		select {
		case ev := <-tcellEvents:
			switch e := ev.(type) {
			case *tcell.EventKey:
				if e.Key() == tcell.KeyEscape || e.Rune() == 'q' {
					close(quit)
					return nil
				}
			case *tcell.EventResize:
				insp.screen.Sync()
				insp.draw()
			}
		case <-insp.events:
			insp.draw()
		}
	}
}

func (insp *inspector) draw() {
	insp.screen.Clear()
	doc := insp.engine.Document()

	headerStyle := tcell.StyleDefault.Bold(true)
	drawText(insp.screen, 0, 0, headerStyle, fmt.Sprintf(
		"notebookconcat inspector — version %d — %s — press q to quit",
		doc.Version(), doc.URI()))

	row := 2
	for i, cellID := range doc.Cells() {
		style := spanStyle(i)
		drawText(insp.screen, 0, row, style.Bold(true), fmt.Sprintf("cell %d: %s", i, cellID))
		row++
		if rng, ok := doc.ConcatRangeOf(cellID); ok {
			drawText(insp.screen, 2, row, style, fmt.Sprintf(
				"concat [%d:%d .. %d:%d]", rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character))
			row++
		}
		if rng, ok := doc.RealRangeOf(cellID); ok {
			drawText(insp.screen, 2, row, style, fmt.Sprintf(
				"real   [%d:%d .. %d:%d]", rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character))
			row++
		}
		row++
	}

	insp.screen.Show()
}

// drawText advances by display column, not byte offset, so a cell/text
// preview containing East-Asian wide characters doesn't overlap the next row.
func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		screen.SetContent(col, y, r, nil, style)
		col += runeWidth(r)
	}
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// spanStyle picks a stable color per cell index so adjacent cells read
// distinctly in the span list.
func spanStyle(index int) tcell.Style {
	hue := float64((index * 67) % 360)
	c := colorful.Hsv(hue, 0.55, 0.9)
	r, g, b := c.RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
