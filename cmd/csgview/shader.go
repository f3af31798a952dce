package main

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const vertexSrc = `#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 uv;
uniform mat4 mvp;
uniform mat4 model;
out vec3 vNormal;
out vec2 vUV;
void main() {
	vNormal = mat3(model) * normal;
	vUV = uv;
	gl_Position = mvp * vec4(position, 1.0);
}` + "\x00"

const fragmentSrc = `#version 410 core
in vec3 vNormal;
in vec2 vUV;
out vec4 fragColor;
const vec3 lightDir = normalize(vec3(0.4, 0.7, 0.6));
void main() {
	float lambert = max(dot(normalize(vNormal), lightDir), 0.0);
	float checker = mod(floor(vUV.x * 4.0) + floor(vUV.y * 4.0), 2.0) * 0.05;
	vec3 base = vec3(0.55, 0.62, 0.75) - checker;
	fragColor = vec4(base * (0.25 + 0.75 * lambert), 1.0);
}` + "\x00"

// newProgram compiles shaders and links them into a program.
func newProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	v, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	f, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	var status int32

	program := gl.CreateProgram()
	gl.AttachShader(program, v)
	gl.AttachShader(program, f)
	gl.LinkProgram(program)
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return 0, fmt.Errorf("program link error: %s", string(log))
	}

	// shaders can be deleted after linking
	gl.DeleteShader(v)
	gl.DeleteShader(f)
	return program, nil
}

func compileShader(src string, kind uint32) (uint32, error) {
	s := gl.CreateShader(kind)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(s, 1, csrc, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(s, logLength, nil, &log[0])
		gl.DeleteShader(s)
		return 0, fmt.Errorf("compile error: %s", string(log))
	}
	return s, nil
}
