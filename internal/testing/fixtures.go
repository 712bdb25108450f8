package testing

import "encoding/base64"

// ShopSpec is a small OpenAPI document with one POST operation, one nested request
// model and one response model.
const ShopSpec = `
openapi: 3.0.1
info:
  title: Shop
  version: 2.0.0
paths:
  /orders:
    post:
      operationId: createOrder
      summary: Create an order
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Order'}
      responses:
        "201":
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Receipt'}
components:
  schemas:
    Order:
      required: [id]
      properties:
        id: {type: string, example: A-1}
        lines:
          type: array
          items: {$ref: '#/components/schemas/Line'}
    Line:
      properties:
        sku: {type: string}
        quantity: {type: integer, format: int32}
    Receipt:
      properties:
        number: {type: string}
        placedAt: {type: string, format: date-time}
`

// ShopSpecBase64 is ShopSpec as the generate endpoint expects it.
func ShopSpecBase64() string { return base64.StdEncoding.EncodeToString([]byte(ShopSpec)) }
