//go:build !unix

package lib

func checkReadable(dir string) error {
	return nil
}
