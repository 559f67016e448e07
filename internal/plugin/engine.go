package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/natis1/luna/internal/event"
	"github.com/natis1/luna/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the content scripts.
// Single-goroutine access only (game loop); presence hooks fire there.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	loaded int
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	corePath := filepath.Join(scriptsDir, "core")
	if err := e.loadDir(corePath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load core scripts: %w", err)
	}
	for _, sub := range []string{"item", "npc", "object", "area", "events"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.loaded++
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Count returns how many scripts were loaded.
func (e *Engine) Count() int {
	return e.loaded
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// call invokes a global Lua function if the scripts define one.
func (e *Engine) call(fn string, args ...lua.LValue) {
	val := e.vm.GetGlobal(fn)
	if val.Type() != lua.LTFunction {
		return
	}
	if err := e.vm.CallByParam(lua.P{Fn: val, NRet: 0, Protect: true}, args...); err != nil {
		e.log.Warn("script hook failed", zap.String("hook", fn), zap.Error(err))
	}
}

// OnLogin posts the login event to the scripts.
func (e *Engine) OnLogin(p *world.Player) {
	e.call("on_login", lua.LString(p.Username()))
}

// OnLogout posts the logout event to the scripts.
func (e *Engine) OnLogout(p *world.Player) {
	e.call("on_logout", lua.LString(p.Username()))
}

// OnChat posts a broadcast chat message to the scripts.
func (e *Engine) OnChat(ev event.ChatBroadcast) {
	e.call("on_chat", lua.LString(ev.Username), lua.LString(ev.Message))
}

// OnPositionChange posts a committed move to the scripts.
func (e *Engine) OnPositionChange(p *world.Player, old world.Position) {
	e.call("on_position_change", lua.LString(p.Username()),
		lua.LNumber(old.X), lua.LNumber(old.Y),
		lua.LNumber(p.Position().X), lua.LNumber(p.Position().Y))
}
