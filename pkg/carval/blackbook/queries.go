package blackbook

const testQuery = `
query TestQuery {
    __typename
}
`

const introspectionQuery = `
query IntrospectionQuery {
    __schema {
        queryType { name }
        types {
            name
            kind
            fields {
                name
                type {
                    name
                    kind
                }
            }
        }
    }
}
`

const vehicleDataQuery = `
query GetVehicleData($vin: String!) {
    usedvehicles(vin: $vin) {
        error_count
        warning_count
        message_list {
            description
            code
            type
        }
        usedvehicles {
            vin
            model_year
            make
            model
            series
            style
            description_score
            base_whole_rough
            mileage_whole_rough
            adjusted_whole_rough
            base_retail_rough
            mileage_retail_rough
            adjusted_retail_rough
            base_tradein_rough
            mileage_tradein_rough
            adjusted_tradein_rough
            uvc
        }
    }
}
`

const vehicleInfoQuery = `
query GetVehicleInfo($vin: String!) {
    usedvehicles(vin: $vin) {
        error_count
        warning_count
        message_list {
            description
            code
            type
        }
        usedvehicles {
            uvc
            model_year
            make
            model
            publish_date
            vin
        }
    }
}
`

const regionPricingQuery = `
query GetPricing($vin: String!, $mileage: Int!, $province: String!) {
    usedvehicles(vin: $vin, mileage: $mileage, province: $province) {
        usedvehicles {
            vin
            model_year
            make
            model
            series
            style
            uvc
            publish_date
            description_score
            adjusted_whole_rough
            adjusted_retail_rough
            adjusted_tradein_rough
        }
    }
}
`
