package database

import (
	"fmt"
	"reflect"
)

// fillSlice appends n decoded elements to the slice out points at. decode
// receives a pointer to a fresh element and returns the document id.
func fillSlice(out any, n int, decode func(i int, dst any) (string, error)) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("database: out must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, n)
	for i := 0; i < n; i++ {
		elem := reflect.New(elemType)
		id, err := decode(i, elem.Interface())
		if err != nil {
			return err
		}
		setID(elem.Interface(), id)
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}
