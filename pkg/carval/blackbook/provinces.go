package blackbook

import "github.com/nekruzvatanshoev/carval/pkg/carval/province"

// FallbackProvinceCode is used for names missing from the code table.
const FallbackProvinceCode = "ON"

// regionFor resolves name to a pricing region. Unknown names get
// FallbackProvinceCode and ok=false.
func regionFor(name string) (region province.Region, ok bool) {
	code, ok := province.Code(name)
	if !ok {
		code = FallbackProvinceCode
	}
	return province.Region{Name: name, Code: code}, ok
}
