//go:build arm64
// +build arm64

package arch

func init() {
	Local = AArch64
}
