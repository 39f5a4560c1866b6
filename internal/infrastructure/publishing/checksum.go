package publishing

import (
	//nolint:gosec // G501: md5 sidecars are required by Maven repositories
	"crypto/md5"
	//nolint:gosec // G505: sha1 sidecars are required by Maven repositories
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// checksumAlgorithms are the sidecar files uploaded next to each file.
var checksumAlgorithms = []struct {
	ext string
	new func() hash.Hash
}{
	{ext: "md5", new: md5.New},
	{ext: "sha1", new: sha1.New},
	{ext: "sha256", new: sha256.New},
}

type checksum struct {
	ext string
	sum string
}

// checksums returns the hex digests of data in upload order.
func checksums(data []byte) []checksum {
	sums := make([]checksum, 0, len(checksumAlgorithms))
	for _, alg := range checksumAlgorithms {
		h := alg.new()
		_, _ = h.Write(data)
		sums = append(sums, checksum{ext: alg.ext, sum: hex.EncodeToString(h.Sum(nil))})
	}
	return sums
}
