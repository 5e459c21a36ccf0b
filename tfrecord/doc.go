// Package tfrecord reads and writes the record framing used by the OCR
// training files. Each record is laid out as
//
//	uint64 length
//	uint32 masked CRC-32C of the length bytes
//	byte   data[length]
//	uint32 masked CRC-32C of data
//
// with all integers little-endian. Checksums are verified on read, so a
// truncated or corrupted file surfaces as an error wrapping ErrCorrupt
// rather than as garbage records.
//
// Reading every record from a file:
//
//	r := tfrecord.NewReader(f)
//	for {
//	    rec, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    handle(rec)
//	}
package tfrecord
