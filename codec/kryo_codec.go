package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"mini-rpc/errs"
	"mini-rpc/protocol"
)

// KryoCodec is a compact reflective binary serializer (wire id 2, plugin key
// "kryo"). There is no Go package that reproduces Java Kryo's object graph
// format, so this extends the teacher's own length-prefixed binary codec
// (originally hardcoded to one envelope type) into a general reflective
// walker over structs, primitives, slices, and maps — the same "tag +
// length-prefixed fields" shape, generalized the way Kryo itself generalizes
// beyond a single message type.
type KryoCodec struct{}

func (c *KryoCodec) Name() Name                { return NameKryo }
func (c *KryoCodec) ID() protocol.SerializerID { return protocol.SerializerKryo }

// tag identifies the shape of the value that follows.
type kryoTag byte

const (
	tagNil kryoTag = iota
	tagPtr
	tagStruct
	tagString
	tagBool
	tagInt
	tagUint
	tagFloat
	tagBytes
	tagSlice
	tagMap
)

func (c *KryoCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if err := encodeKryoValue(&buf, rv); err != nil {
		return nil, errs.NewSerializationError(string(NameKryo), err)
	}
	return buf.Bytes(), nil
}

func (c *KryoCodec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errs.NewSerializationError(string(NameKryo), fmt.Errorf("kryo: target must be a non-nil pointer"))
	}
	r := bytes.NewReader(data)
	if err := decodeKryoValue(r, rv.Elem()); err != nil {
		return errs.NewSerializationError(string(NameKryo), err)
	}
	return nil
}

func encodeKryoValue(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		buf.WriteByte(byte(tagNil))
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			buf.WriteByte(byte(tagNil))
			return nil
		}
		buf.WriteByte(byte(tagPtr))
		return encodeKryoValue(buf, v.Elem())

	case reflect.Struct:
		buf.WriteByte(byte(tagStruct))
		t := v.Type()
		var fields []reflect.StructField
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				fields = append(fields, t.Field(i))
			}
		}
		writeUvarint(buf, uint64(len(fields)))
		for _, f := range fields {
			writeLenPrefixed(buf, []byte(f.Name))
			if err := encodeKryoValue(buf, v.FieldByName(f.Name)); err != nil {
				return err
			}
		}
		return nil

	case reflect.String:
		buf.WriteByte(byte(tagString))
		writeLenPrefixed(buf, []byte(v.String()))
		return nil

	case reflect.Bool:
		buf.WriteByte(byte(tagBool))
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteByte(byte(tagInt))
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.Int()))
		buf.Write(b[:])
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buf.WriteByte(byte(tagUint))
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.Uint())
		buf.Write(b[:])
		return nil

	case reflect.Float32, reflect.Float64:
		buf.WriteByte(byte(tagFloat))
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.Float()))
		buf.Write(b[:])
		return nil

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			buf.WriteByte(byte(tagBytes))
			writeLenPrefixed(buf, v.Bytes())
			return nil
		}
		buf.WriteByte(byte(tagSlice))
		writeUvarint(buf, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			if err := encodeKryoValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		buf.WriteByte(byte(tagMap))
		keys := v.MapKeys()
		writeUvarint(buf, uint64(len(keys)))
		for _, k := range keys {
			if err := encodeKryoValue(buf, k); err != nil {
				return err
			}
			if err := encodeKryoValue(buf, v.MapIndex(k)); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("kryo: unsupported kind %s", v.Kind())
}

func decodeKryoValue(r *bytes.Reader, v reflect.Value) error {
	tagByte, err := r.ReadByte()
	if err != nil {
		return err
	}
	tag := kryoTag(tagByte)
	if tag == tagNil {
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		if tag != tagPtr {
			return fmt.Errorf("kryo: expected ptr tag, got %d", tag)
		}
		return decodeKryoValue(r, v.Elem())

	case reflect.Struct:
		if tag != tagStruct {
			return fmt.Errorf("kryo: expected struct tag, got %d", tag)
		}
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			name, err := readLenPrefixed(r)
			if err != nil {
				return err
			}
			field := v.FieldByName(string(name))
			if !field.IsValid() || !field.CanSet() {
				if err := skipKryoValue(r); err != nil {
					return err
				}
				continue
			}
			if err := decodeKryoValue(r, field); err != nil {
				return err
			}
		}
		return nil

	case reflect.String:
		b, err := readLenPrefixed(r)
		if err != nil {
			return err
		}
		v.SetString(string(b))
		return nil

	case reflect.Bool:
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		v.SetBool(b != 0)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var b [8]byte
		if _, err := readFull(r, b[:]); err != nil {
			return err
		}
		v.SetInt(int64(binary.BigEndian.Uint64(b[:])))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var b [8]byte
		if _, err := readFull(r, b[:]); err != nil {
			return err
		}
		v.SetUint(binary.BigEndian.Uint64(b[:]))
		return nil

	case reflect.Float32, reflect.Float64:
		var b [8]byte
		if _, err := readFull(r, b[:]); err != nil {
			return err
		}
		v.SetFloat(math.Float64frombits(binary.BigEndian.Uint64(b[:])))
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := readLenPrefixed(r)
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(v.Type(), int(n), int(n))
		for i := uint64(0); i < n; i++ {
			if err := decodeKryoValue(r, out.Index(int(i))); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil

	case reflect.Map:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		out := reflect.MakeMapWithSize(v.Type(), int(n))
		for i := uint64(0); i < n; i++ {
			key := reflect.New(v.Type().Key()).Elem()
			if err := decodeKryoValue(r, key); err != nil {
				return err
			}
			val := reflect.New(v.Type().Elem()).Elem()
			if err := decodeKryoValue(r, val); err != nil {
				return err
			}
			out.SetMapIndex(key, val)
		}
		v.Set(out)
		return nil
	}

	return fmt.Errorf("kryo: unsupported kind %s", v.Kind())
}

// skipKryoValue discards one encoded value whose destination field no
// longer exists (e.g. schema drift between writer and reader).
func skipKryoValue(r *bytes.Reader) error {
	tagByte, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch kryoTag(tagByte) {
	case tagNil:
		return nil
	case tagPtr:
		return skipKryoValue(r)
	case tagStruct:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if _, err := readLenPrefixed(r); err != nil {
				return err
			}
			if err := skipKryoValue(r); err != nil {
				return err
			}
		}
		return nil
	case tagString, tagBytes:
		_, err := readLenPrefixed(r)
		return err
	case tagBool:
		_, err := r.ReadByte()
		return err
	case tagInt, tagUint, tagFloat:
		var b [8]byte
		_, err := readFull(r, b[:])
		return err
	case tagSlice:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := skipKryoValue(r); err != nil {
				return err
			}
		}
		return nil
	case tagMap:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := skipKryoValue(r); err != nil {
				return err
			}
			if err := skipKryoValue(r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("kryo: unknown tag %d during skip", tagByte)
}

func writeUvarint(buf *bytes.Buffer, n uint64) {
	var b [binary.MaxVarintLen64]byte
	m := binary.PutUvarint(b[:], n)
	buf.Write(b[:m])
}

func readUvarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := readFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := r.Read(b[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
