package loader

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	rooms    []rawRoom
	items    []rawItem
	npcs     []rawNPC
	quests   []rawQuest
	endings  []rawEnding
	rules    []rawRule
	handlers []rawHandler
	order    int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading.
func Load(dir string) (*state.Defs, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS is Load over any fs.FS; the embedded content package uses this.
func LoadFS(fsys fs.FS) (*state.Defs, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading content directory: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := L.DoString(string(src)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	if err := validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// alphabetical, so the Game{} block exists before anything references it.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
