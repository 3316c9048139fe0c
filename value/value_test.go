package value

import "testing"

func TestResult_Failed(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{name: "no exception", r: Result{NID: 1, Returned: 42}, want: false},
		{
			name: "function error",
			r:    Result{NID: 1, Exception: &ExceptionInfo{Function: &ErrInfo{Name: "Boom"}}},
			want: true,
		},
		{
			name: "wrapper error",
			r:    Result{NID: 1, Exception: &ExceptionInfo{Wrappers: &ErrInfo{Name: "WrapperFailed"}}},
			want: true,
		},
		{
			name: "empty exception struct",
			r:    Result{NID: 1, Exception: &ExceptionInfo{}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Failed(); got != tt.want {
				t.Errorf("Failed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExceptionInfo_Present_NilReceiver(t *testing.T) {
	var e *ExceptionInfo
	if e.Present() {
		t.Error("Present() on nil *ExceptionInfo should be false")
	}
}

func TestErrInfo_String(t *testing.T) {
	var nilInfo *ErrInfo
	if got := nilInfo.String(); got != "<nil>" {
		t.Errorf("String() on nil *ErrInfo = %q, want %q", got, "<nil>")
	}

	info := &ErrInfo{Name: "Timeout", Args: map[string]any{"timeout_ms": int64(500)}}
	want := "Timeout(map[timeout_ms:500])"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
