package rendering

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

//go:embed all:shaders
var __shaders__ embed.FS

const shadersRoot = "shaders"

// shaderSource is one stage of a program, read from "<seq>.<stage>.glsl".
type shaderSource struct {
	Seq        int
	Stage      string
	SourceCode string
}

type shader struct {
	Handle uint32
	Type   uint32
	shaderSource
}

func parseShaderName(name string) (seq int, stage string, err error) {
	p := strings.Split(name, ".")
	if len(p) != 3 || p[2] != "glsl" {
		return 0, "", fmt.Errorf("invalid shader file name: %s", name)
	}
	switch p[1] {
	case "vertex", "fragment", "geometry":
	default:
		return 0, "", fmt.Errorf("unknown shader type: %s", p[1])
	}
	seq, err = strconv.Atoi(p[0])
	if err != nil {
		return 0, "", fmt.Errorf("invalid shader sequence number: %s", p[0])
	}
	if seq < 0 {
		return 0, "", fmt.Errorf("shader sequence number must be non-negative: %d", seq)
	}
	return seq, p[1], nil
}

// collectShaders reads every directory under root holding .glsl files as
// one program, named by its path relative to root. Stages must be numbered
// 0..n-1 without gaps.
func collectShaders(fsys fs.FS, root string) (map[string][]shaderSource, error) {
	programs := make(map[string][]shaderSource)
	err := fs.WalkDir(fsys, root, func(dir string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		sources, err := loadShaderDirectory(fsys, dir)
		if err != nil || len(sources) == 0 {
			return err
		}
		name := strings.TrimPrefix(strings.TrimPrefix(dir, root), "/")
		programs[name] = sources
		return nil
	})
	return programs, err
}

func loadShaderDirectory(fsys fs.FS, dir string) ([]shaderSource, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var sources []shaderSource
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".glsl" {
			continue
		}
		seq, stage, err := parseShaderName(name)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sources = append(sources, shaderSource{Seq: seq, Stage: stage, SourceCode: string(data)})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Seq < sources[j].Seq })
	for i, source := range sources {
		if source.Seq != i {
			return nil, fmt.Errorf("missing shader with sequence number: %d in directory: %s", i, dir)
		}
	}
	return sources, nil
}

func shaderType(stage string) uint32 {
	switch stage {
	case "vertex":
		return gl.VERTEX_SHADER
	case "geometry":
		return gl.GEOMETRY_SHADER
	default:
		return gl.FRAGMENT_SHADER
	}
}

// Programs holds linked shader programs by name. It needs a current GL
// context.
type Programs struct {
	programs map[string]uint32
}

func LoadPrograms(fsys fs.FS, root string) (*Programs, error) {
	sources, err := collectShaders(fsys, root)
	if err != nil {
		return nil, err
	}
	programs := &Programs{programs: make(map[string]uint32)}
	for name, stages := range sources {
		shaders, err := buildShaders(name, stages)
		if err != nil {
			programs.Delete()
			return nil, err
		}
		program, err := linkShaders(name, shaders)
		for _, shader := range shaders {
			gl.DeleteShader(shader.Handle)
		}
		if err != nil {
			programs.Delete()
			return nil, err
		}
		programs.programs[name] = program
	}
	return programs, nil
}

func (programs *Programs) Program(name string) (uint32, bool) {
	program, ok := programs.programs[name]
	return program, ok
}

func (programs *Programs) Use(name string) {
	if program, ok := programs.programs[name]; ok {
		gl.UseProgram(program)
	}
}

func (programs *Programs) Delete() {
	for name, program := range programs.programs {
		gl.DeleteProgram(program)
		delete(programs.programs, name)
	}
}

func buildShaders(name string, sources []shaderSource) ([]*shader, error) {
	shaders := make([]*shader, 0, len(sources))
	for _, source := range sources {
		shader := &shader{Type: shaderType(source.Stage), shaderSource: source}
		shader.Handle = gl.CreateShader(shader.Type)
		if shader.Handle == 0 {
			return nil, fmt.Errorf("failed to create shader handle for %s", name)
		}

		csources, free := gl.Strs(shader.SourceCode + "\x00")
		gl.ShaderSource(shader.Handle, 1, csources, nil)
		free()
		gl.CompileShader(shader.Handle)

		var status int32
		gl.GetShaderiv(shader.Handle, gl.COMPILE_STATUS, &status)
		if status == gl.FALSE {
			var logLength int32
			gl.GetShaderiv(shader.Handle, gl.INFO_LOG_LENGTH, &logLength)

			logBuffer := make([]byte, logLength+1)
			gl.GetShaderInfoLog(shader.Handle, logLength, nil, &logBuffer[0])
			logString := gl.GoStr(&logBuffer[0])

			gl.DeleteShader(shader.Handle)
			for _, built := range shaders {
				gl.DeleteShader(built.Handle)
			}
			return nil, fmt.Errorf("failed to compile shader %s/%d.%s:\n%s", name, source.Seq, source.Stage, logString)
		}
		shaders = append(shaders, shader)
	}
	return shaders, nil
}

func linkShaders(name string, shaders []*shader) (uint32, error) {
	program := gl.CreateProgram()
	for _, shader := range shaders {
		gl.AttachShader(program, shader.Handle)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		logBuffer := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &logBuffer[0])
		logString := gl.GoStr(&logBuffer[0])

		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program %s:\n%s", name, logString)
	}
	return program, nil
}
