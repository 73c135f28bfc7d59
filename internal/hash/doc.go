// Package hash provides the CRC32-Castagnoli (CRC32C) checksums sent with
// blob uploads.
//
// CRC32C is the checksum S3 validates server side. Go's crc32 package uses
// hardware instructions for it when available.
//
//	checksum := hash.CRC32C(data)
//	header := hash.CRC32CBase64(data)
package hash
