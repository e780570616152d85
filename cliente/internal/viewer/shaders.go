package viewer

import "strings"

// Vértice instanciado: raylib preenche instanceTransform por instância
// a partir do slice de matrizes passado em DrawMeshInstanced.
const cutoutInstancedVertexShader = `
#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in mat4 instanceTransform;

uniform mat4 mvp;

out vec2 fragTexCoord;
out vec3 fragNormal;

void main() {
    fragTexCoord = vertexTexCoord;
    fragNormal = normalize(mat3(instanceTransform) * vertexNormal);
    gl_Position = mvp * instanceTransform * vec4(vertexPosition, 1.0);
}
`

// Recorte binário: texels abaixo do corte são descartados, sem blending.
// A luz direcional fixa imita o sombreamento por face do jogo.
const cutoutFragmentShader = `
#version 330
in vec2 fragTexCoord;
in vec3 fragNormal;

uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform float alphaCutoff;

out vec4 finalColor;

void main() {
    vec4 texelColor = texture(texture0, fragTexCoord);
    if (texelColor.a < alphaCutoff) discard;

    vec3 n = normalize(fragNormal);
    float shade = 0.6 + 0.4 * max(dot(n, normalize(vec3(0.3, 1.0, 0.5))), 0.0);

    vec3 color = texelColor.rgb * colDiffuse.rgb * shade;
    //TONEMAP
    finalColor = vec4(color, 1.0);
}
`

// cutoutFragment retorna o fragment shader, com ou sem a curva de tone mapping.
func cutoutFragment(toneMapped bool) string {
	if !toneMapped {
		return cutoutFragmentShader
	}
	return strings.Replace(cutoutFragmentShader, "//TONEMAP", "color = color / (color + vec3(1.0));", 1)
}
