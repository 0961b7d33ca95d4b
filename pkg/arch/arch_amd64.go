//go:build amd64
// +build amd64

package arch

func init() {
	Local = X86_64
}
