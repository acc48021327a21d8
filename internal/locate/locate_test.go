// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inline-lab/internal/lexer"
	"github.com/petar-djukic/inline-lab/pkg/types"
)

// mustLocate tokenizes src and runs the locator over it.
func mustLocate(t *testing.T, src string) []types.FunctionSpan {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	return Functions(toks, "sample.cpp")
}

func TestFunctionsSimple(t *testing.T) {
	spans := mustLocate(t, "int square(int x) {\n    return x * x;\n}\n")
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, "sample.cpp", got.Identity.File)
	assert.Equal(t, "square", got.Identity.Function)
	assert.Equal(t, 0, got.Identity.Ordinal)
	assert.Equal(t, 1, got.ParameterCount)
	assert.Equal(t, 0, got.SignatureStart, "signature starts at the return type")
	assert.Equal(t, 5, got.SignatureEnd, "signature ends just before the body brace")
	assert.Equal(t, 6, got.BodyStart)
	assert.Equal(t, 12, got.BodyEnd)
}

func TestFunctionsPrototypeSkipped(t *testing.T) {
	src := "int add(int a, int b);\nint add(int a, int b) { return a + b; }\n"
	spans := mustLocate(t, src)
	require.Len(t, spans, 1, "prototype must not produce a span")
	assert.Equal(t, "add", spans[0].Identity.Function)
	assert.Equal(t, 0, spans[0].Identity.Ordinal, "ordinals count definitions only")
}

func TestFunctionsMemberDefinitions(t *testing.T) {
	src := `class Matrix {
public:
    int rows() const { return r; }
    int cols() const;
private:
    int r;
};

int Matrix::cols() const { return 4; }
`
	spans := mustLocate(t, src)
	require.Len(t, spans, 1, "in-class bodies are opaque, out-of-class definitions count")
	assert.Equal(t, "Matrix::cols", spans[0].Identity.Function)
	assert.Equal(t, 0, spans[0].ParameterCount)
}

func TestFunctionsDestructor(t *testing.T) {
	src := "struct Holder { ~Holder(); };\nHolder::~Holder() { release(); }\n"
	spans := mustLocate(t, src)
	require.Len(t, spans, 1)
	assert.Equal(t, "Holder::~Holder", spans[0].Identity.Function)
}

func TestFunctionsConstructorWithInitializerList(t *testing.T) {
	src := "Counter::Counter(int start) : value_(start), step_(1) {\n}\n"
	spans := mustLocate(t, src)
	require.Len(t, spans, 1)
	assert.Equal(t, "Counter::Counter", spans[0].Identity.Function)
	assert.Equal(t, 1, spans[0].ParameterCount)
}

func TestFunctionsTemplate(t *testing.T) {
	src := "template <typename T>\nT biggest(T a, T b) {\n    return a > b ? a : b;\n}\n"
	spans := mustLocate(t, src)
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, "biggest", got.Identity.Function)
	assert.Equal(t, 2, got.ParameterCount)
	assert.Equal(t, 0, got.SignatureStart, "template clause belongs to the signature")
}

func TestFunctionsOverloadOrdinals(t *testing.T) {
	src := `int process(int a) { return a; }
double process(double a) { return a * 2.0; }
int other() { return 0; }
`
	spans := mustLocate(t, src)
	require.Len(t, spans, 3)

	assert.Equal(t, "process", spans[0].Identity.Function)
	assert.Equal(t, 0, spans[0].Identity.Ordinal)
	assert.Equal(t, "process", spans[1].Identity.Function)
	assert.Equal(t, 1, spans[1].Identity.Ordinal)
	assert.Equal(t, "other", spans[2].Identity.Function)
	assert.Equal(t, 0, spans[2].Identity.Ordinal)
}

func TestFunctionsNamespaceScope(t *testing.T) {
	src := `namespace util {
int helper(int v) { return v + 1; }
}
int after() { return 2; }
`
	spans := mustLocate(t, src)
	require.Len(t, spans, 2, "namespace scope is transparent")
	assert.Equal(t, "helper", spans[0].Identity.Function)
	assert.Equal(t, "after", spans[1].Identity.Function)
}

func TestFunctionsParameterCounts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "empty list",
			src:  "int zero() { return 0; }",
			want: 0,
		},
		{
			name: "void list",
			src:  "int zero(void) { return 0; }",
			want: 0,
		},
		{
			name: "comma inside template argument",
			src:  "void configure(std::map<std::string, std::string>& opts, int level) { }",
			want: 2,
		},
		{
			name: "nested template closer",
			src:  "int total(std::vector<std::pair<int, int>> items) { return 0; }",
			want: 1,
		},
		{
			name: "default argument expression",
			src:  "int scale(int v, int factor = 2) { return v * factor; }",
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := mustLocate(t, tt.src)
			require.Len(t, spans, 1)
			assert.Equal(t, tt.want, spans[0].ParameterCount)
		})
	}
}

func TestFunctionsNonDefinitions(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "global variable with constructor arguments",
			src:  "Widget w(42);",
		},
		{
			name: "global brace initializer",
			src:  "std::vector<int> nums{1, 2, 3};",
		},
		{
			name: "file scope lambda",
			src:  "auto L = [](int n) { return n; };",
		},
		{
			name: "using alias",
			src:  "using Grid = std::vector<std::vector<int>>;",
		},
		{
			name: "bare call in initializer",
			src:  "int seed = compute(7);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := mustLocate(t, tt.src)
			assert.Empty(t, spans)
		})
	}
}

func TestFunctionsSignatureShapes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		function string
	}{
		{
			name:     "pointer return type",
			src:      `const char* label() { return "x"; }`,
			function: "label",
		},
		{
			name:     "reference return with qualification",
			src:      "std::string& pick(std::vector<std::string>& all) { return all[0]; }",
			function: "pick",
		},
		{
			name:     "template return type",
			src:      "std::map<std::string, int> tally() { return {}; }",
			function: "tally",
		},
		{
			name:     "trailing return type",
			src:      "auto twice(int v) -> int { return v + v; }",
			function: "twice",
		},
		{
			name:     "trailing return type with literal argument",
			src:      "auto zeros() -> std::array<int, 3> { return {}; }",
			function: "zeros",
		},
		{
			name:     "static helper",
			src:      "static inline int bump(int v) { return v + 1; }",
			function: "bump",
		},
		{
			name:     "noexcept qualifier",
			src:      "int stable(int v) noexcept { return v; }",
			function: "stable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := mustLocate(t, tt.src)
			require.Len(t, spans, 1)
			assert.Equal(t, tt.function, spans[0].Identity.Function)
		})
	}
}

func TestFunctionsBodyBounds(t *testing.T) {
	src := "int outer(int n) {\n    if (n > 0) { n--; }\n    return n;\n}\nint next() { return 1; }\n"
	toks, err := lexer.Scan(src)
	require.NoError(t, err)

	spans := Functions(toks, "bounds.cpp")
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Equal(t, "{", toks[first.BodyStart].Text)
	assert.Equal(t, "}", toks[first.BodyEnd].Text)
	assert.Equal(t, first.BodyStart-1, first.SignatureEnd)
	assert.Greater(t, spans[1].SignatureStart, first.BodyEnd,
		"nested braces inside a body must not end it early")
}

func TestFunctionsFullFile(t *testing.T) {
	src := `#include <vector>
#include <string>

using namespace std;

const int LIMIT = 100;

class Accumulator {
public:
    Accumulator() : total_(0) {}
    void add(int v) { total_ += v; }
    int total() const;
private:
    int total_;
};

int Accumulator::total() const {
    return total_;
}

static vector<int> seed(int n) {
    vector<int> out;
    for (int i = 0; i < n; i++) {
        out.push_back(i);
    }
    return out;
}

int main() {
    Accumulator acc;
    for (int v : seed(LIMIT)) {
        acc.add(v);
    }
    return acc.total();
}
`
	spans := mustLocate(t, src)
	require.Len(t, spans, 3)

	assert.Equal(t, "Accumulator::total", spans[0].Identity.Function)
	assert.Equal(t, "seed", spans[1].Identity.Function)
	assert.Equal(t, 1, spans[1].ParameterCount)
	assert.Equal(t, "main", spans[2].Identity.Function)
	assert.Equal(t, 0, spans[2].ParameterCount)
}
