//go:build !unix

package tx

func lockFile(string) (func(), error) {
	return func() {}, nil
}
