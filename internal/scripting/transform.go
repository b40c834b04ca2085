// Package scripting compiles a short Lua expression into a board.Transform,
// letting an operator supply Board.Map's function argument over HTTP
// without recompiling the binary.
package scripting

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// transformFunc is the Lua source wrapped around a user expression so it can
// be called as a single-argument, single-return function.
const transformFunc = `
local function __transform(token)
%s
end
return __transform
`

// Compiler holds the script source and a pool of warm interpreter states,
// each of which loads the wrapped source when the pool creates it, so that concurrent Transform calls, as issued by board.Map's parallel
// compute phase, never contend on a single *lua.LState (gopher-lua states
// are not safe for concurrent use).
type Compiler struct {
	source string
	pool   sync.Pool
}

// Compile parses and validates source, wrapping it in a function body whose
// return value becomes the replacement token. A script that fails to parse
// is reported immediately rather than on first use.
func Compile(source string) (*Compiler, error) {
	c := &Compiler{source: source}
	c.pool.New = func() any {
		L := lua.NewState()
		if err := L.DoString(fmt.Sprintf(transformFunc, source)); err != nil {
			L.Close()
			return err
		}
		fn, ok := L.Get(-1).(*lua.LFunction)
		if !ok {
			L.Close()
			return fmt.Errorf("scripting: script did not return a function")
		}
		L.Pop(1)
		return &luaState{L: L, fn: fn}
	}

	probe := c.pool.Get()
	defer func() {
		if st, ok := probe.(*luaState); ok {
			c.pool.Put(st)
		}
	}()
	if err, failed := probe.(error); failed {
		return nil, err
	}
	return c, nil
}

type luaState struct {
	L  *lua.LState
	fn *lua.LFunction
}

// Transform satisfies board.Transform. It checks out a pooled *lua.LState,
// calls the compiled chunk with token, and returns it to the pool when
// done. A script error or a non-string return value is reported as an
// error, which Board.Map surfaces to its caller as board.ErrBadArgument.
func (c *Compiler) Transform(ctx context.Context, token string) (string, error) {
	got := c.pool.Get()
	st, ok := got.(*luaState)
	if !ok {
		return "", fmt.Errorf("scripting: %v", got)
	}
	defer c.pool.Put(st)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	st.L.Push(st.fn)
	st.L.Push(lua.LString(token))
	if err := st.L.PCall(1, 1, nil); err != nil {
		return "", fmt.Errorf("scripting: %w", err)
	}
	ret := st.L.Get(-1)
	st.L.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("scripting: script returned %s, want string", ret.Type().String())
	}
	return string(s), nil
}
