package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want Signals
	}{
		{
			name: "all signals present",
			body: `<html><head><title>T</title><meta name="description" content="D"></head>` +
				`<body><h1>H</h1></body></html>`,
			want: Signals{H1: "H", Title: "T", Description: "D"},
		},
		{
			name: "nothing present",
			body: `<html><head></head><body><p>plain</p></body></html>`,
			want: Signals{},
		},
		{
			name: "empty body",
			body: ``,
			want: Signals{},
		},
		{
			name: "first h1 wins and nested text is flattened",
			body: `<body><h1> Hello <span>world</span> </h1><h1>second</h1></body>`,
			want: Signals{H1: "Hello world"},
		},
		{
			name: "description meta without content",
			body: `<head><meta name="description"><meta name="description" content="later"></head>`,
			want: Signals{},
		},
		{
			name: "description name is case insensitive",
			body: `<head><meta name="keywords" content="k"><meta name="Description" content="d"></head>`,
			want: Signals{Description: "d"},
		},
		{
			name: "malformed markup still yields signals",
			body: `<html><body><div><h1>Unclosed`,
			want: Signals{H1: "Unclosed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromHTML([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
