package cache

import (
	"io/fs"
	"path"

	"github.com/debemdeboas/sorteio-admin/internal/util"
)

// ETags of embedded static files, keyed by URL path.
var staticCache = NewCache[string, string]()

func GetStaticHash(urlPath string) (string, bool) {
	return staticCache.Get(urlPath)
}

func SetStaticHash(urlPath, hash string) {
	staticCache.Set(urlPath, hash)
}

// HashStatic hashes every file under dir in assets and publishes the result
// under urlPrefix, replacing whatever was hashed before. It returns the number
// of files hashed.
func HashStatic(assets fs.FS, dir, urlPrefix string) (int, error) {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		return 0, err
	}

	hashes := make(map[string]string)
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(sub, p)
		if err != nil {
			return err
		}
		hashes[path.Join(urlPrefix, p)] = `"` + util.ContentHash(data)[:16] + `"`
		return nil
	})
	if err != nil {
		return 0, err
	}

	staticCache.SetTo(hashes)
	return len(hashes), nil
}
