package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/notebookconcat/internal/concat"
)

// Console wraps a Lua State pre-registered with open/close/edit/refresh
// functions that drive a concat engine. It exists so a host or test can
// script cell lifecycle events instead of constructing Go structs directly —
// handy for authoring reproduction scripts for the worked scenarios, and for
// the inspector's scripted demo mode.
type Console struct {
	state  *State
	bridge *Bridge
	engine *concat.Engine
}

// NewConsole creates a Console over engine with a fresh sandboxed Lua state.
func NewConsole(engine *concat.Engine, opts ...StateOption) (*Console, error) {
	state, err := NewState(opts...)
	if err != nil {
		return nil, err
	}

	c := &Console{
		state:  state,
		bridge: NewBridge(state.LuaState()),
		engine: engine,
	}
	c.install()
	return c, nil
}

func (c *Console) install() {
	c.state.RegisterFunc("open", c.luaOpen)
	c.state.RegisterFunc("close", c.luaClose)
	c.state.RegisterFunc("edit", c.luaEdit)
	c.state.RegisterFunc("refresh", c.luaRefresh)
}

// DoString runs a Lua snippet against the console's engine.
func (c *Console) DoString(code string) error {
	return c.state.DoString(code)
}

// DoFile runs a Lua script file against the console's engine.
func (c *Console) DoFile(path string) error {
	return c.state.DoFile(path)
}

// Close releases the console's Lua state.
func (c *Console) Close() error {
	return c.state.Close()
}

// luaOpen implements: open(cell_id, text, version[, force_append]) -> version, accepted
func (c *Console) luaOpen(L *lua.LState) int {
	cellID := concat.DocumentURI(L.CheckString(1))
	text := L.CheckString(2)
	version := L.CheckInt(3)
	forceAppend := L.OptBool(4, false)

	_, ok := c.engine.Open(cellID, text, version, forceAppend)
	L.Push(lua.LNumber(c.engine.Version()))
	L.Push(lua.LBool(ok))
	return 2
}

// luaClose implements: close(cell_id) -> version, accepted
func (c *Console) luaClose(L *lua.LState) int {
	cellID := concat.DocumentURI(L.CheckString(1))

	_, ok := c.engine.Close(cellID)
	L.Push(lua.LNumber(c.engine.Version()))
	L.Push(lua.LBool(ok))
	return 2
}

// luaEdit implements: edit(cell_id, {{range={start_line=,start_char=,end_line=,end_char=}, text=...}, ...}) -> version, accepted
func (c *Console) luaEdit(L *lua.LState) int {
	cellID := concat.DocumentURI(L.CheckString(1))
	changesTable := L.CheckTable(2)

	changes, err := c.decodeChanges(changesTable)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	_, ok := c.engine.Edit(cellID, changes)
	L.Push(lua.LNumber(c.engine.Version()))
	L.Push(lua.LBool(ok))
	return 2
}

// luaRefresh implements: refresh({{uri=, text=, version=}, ...}) -> version, accepted
func (c *Console) luaRefresh(L *lua.LState) int {
	cellsTable := L.CheckTable(1)

	var cells []concat.RefreshCell
	cellsTable.ForEach(func(_, v lua.LValue) {
		t, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		uri, _ := c.bridge.GetTableString(t, "uri")
		text, _ := c.bridge.GetTableString(t, "text")
		version, _ := c.bridge.GetTableInt(t, "version")
		cells = append(cells, concat.RefreshCell{
			TextDocument: concat.TextDocumentItem{
				URI:     concat.DocumentURI(uri),
				Text:    text,
				Version: version,
			},
		})
	})

	_, ok := c.engine.Refresh(cells)
	L.Push(lua.LNumber(c.engine.Version()))
	L.Push(lua.LBool(ok))
	return 2
}

func (c *Console) decodeChanges(t *lua.LTable) ([]concat.ContentChange, error) {
	var changes []concat.ContentChange
	t.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		text, _ := c.bridge.GetTableString(entry, "text")
		change := concat.ContentChange{Text: text}

		if rngVal, ok := c.bridge.GetTableTable(entry, "range"); ok {
			startLine, _ := c.bridge.GetTableInt(rngVal, "start_line")
			startChar, _ := c.bridge.GetTableInt(rngVal, "start_char")
			endLine, _ := c.bridge.GetTableInt(rngVal, "end_line")
			endChar, _ := c.bridge.GetTableInt(rngVal, "end_char")
			rng := concat.Range{
				Start: concat.Position{Line: startLine, Character: startChar},
				End:   concat.Position{Line: endLine, Character: endChar},
			}
			change.Range = &rng
		}

		changes = append(changes, change)
	})
	return changes, nil
}
