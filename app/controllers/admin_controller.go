package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

// maxUploadForm bounds a multi-image upload request.
const maxUploadForm = 10 * services.MaxImageBytes

type AdminController struct {
	admin  *services.AdminService
	orders *services.OrderService
	images *services.ImageService
}

func NewAdminController(admin *services.AdminService, orders *services.OrderService, images *services.ImageService) *AdminController {
	return &AdminController{admin: admin, orders: orders, images: images}
}

func (ac *AdminController) Dashboard(c *ctx.Context) {
	d, err := ac.admin.Dashboard(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(d)
}

// ─── Products ─────────────────────────────────────────────────────────────────

// Products GET /api/admin/products?q=&brand_id=&category_id=&active=
func (ac *AdminController) Products(c *ctx.Context) {
	f := repositories.ProductFilter{
		Search:     c.Query("q"),
		BrandID:    uint(c.QueryInt("brand_id", 0)),
		CategoryID: uint(c.QueryInt("category_id", 0)),
	}
	if v, err := strconv.ParseBool(c.Query("active")); err == nil {
		f.Active = &v
	}
	products, p, err := ac.admin.Products(c.Context(), f, c.Pagination())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(products, p)
}

func (ac *AdminController) Product(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := ac.admin.Product(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

func (ac *AdminController) CreateProduct(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := ac.admin.CreateProduct(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(product)
}

func (ac *AdminController) UpdateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := ac.admin.UpdateProduct(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Product updated", product)
}

func (ac *AdminController) DeleteProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := ac.admin.DeleteProduct(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// ─── Brands & categories ──────────────────────────────────────────────────────

func (ac *AdminController) Brands(c *ctx.Context) {
	brands, err := ac.admin.Brands(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(brands)
}

// SaveBrand serves both POST /brands and PUT /brands/{id}.
func (ac *AdminController) SaveBrand(c *ctx.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in services.BrandInput
	if !c.BindJSON(&in) {
		return
	}
	brand, err := ac.admin.SaveBrand(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	saved(c, id, brand)
}

func (ac *AdminController) DeleteBrand(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := ac.admin.DeleteBrand(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (ac *AdminController) Categories(c *ctx.Context) {
	cats, err := ac.admin.Categories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cats)
}

func (ac *AdminController) SaveCategory(c *ctx.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := ac.admin.SaveCategory(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	saved(c, id, cat)
}

func (ac *AdminController) DeleteCategory(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := ac.admin.DeleteCategory(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// ─── Collections ──────────────────────────────────────────────────────────────

func (ac *AdminController) Collections(c *ctx.Context) {
	cols, err := ac.admin.Collections(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cols)
}

func (ac *AdminController) Collection(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	col, err := ac.admin.Collection(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(col)
}

func (ac *AdminController) SaveCollection(c *ctx.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in services.CollectionInput
	if !c.BindJSON(&in) {
		return
	}
	col, err := ac.admin.SaveCollection(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	saved(c, id, col)
}

// SetCollectionProducts PUT /api/admin/collections/{id}/products
func (ac *AdminController) SetCollectionProducts(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in struct {
		ProductIDs []uint `json:"product_ids"`
	}
	if !c.BindJSON(&in) {
		return
	}
	col, err := ac.admin.SetCollectionProducts(c.Context(), id, in.ProductIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Collection products updated", col)
}

func (ac *AdminController) DeleteCollection(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := ac.admin.DeleteCollection(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// ─── Customers & orders ───────────────────────────────────────────────────────

func (ac *AdminController) Customers(c *ctx.Context) {
	rows, p, err := ac.admin.Customers(c.Context(), c.Query("q"), c.Pagination())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(rows, p)
}

// Orders GET /api/admin/orders?status=&q=
func (ac *AdminController) Orders(c *ctx.Context) {
	f := repositories.OrderFilter{Status: c.Query("status"), Search: c.Query("q")}
	orders, p, err := ac.orders.List(c.Context(), f, c.Pagination())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(orders, p)
}

func (ac *AdminController) Order(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := ac.orders.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

// UpdateOrderStatus PATCH /api/admin/orders/{id}/status
func (ac *AdminController) UpdateOrderStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := ac.orders.UpdateStatus(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Order status updated", order)
}

// ─── Images ───────────────────────────────────────────────────────────────────

// UploadImages POST /api/admin/images (multipart: folder, images[]).
// Files are stored concurrently; failures are reported per filename.
func (ac *AdminController) UploadImages(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxUploadForm)
	if err := c.R.ParseMultipartForm(services.MaxImageBytes); err != nil {
		c.Error(http.StatusBadRequest, "Expected a multipart form of at most 50 MB")
		return
	}
	form := c.R.MultipartForm
	defer form.RemoveAll() //nolint:errcheck

	files := append(form.File["images"], form.File["image"]...)
	if len(files) == 0 {
		c.ValidationError(map[string]string{"images": "At least one image is required."})
		return
	}
	ups := make([]services.Upload, len(files))
	for i, fh := range files {
		ups[i] = services.FromMultipart(fh)
	}

	res := ac.images.StoreMany(c.Context(), c.R.FormValue("folder"), ups)
	if len(res.URLs) == 0 {
		c.ErrorWithData(http.StatusUnprocessableEntity, "No image could be stored", res)
		return
	}
	c.Created(res)
}

// DeleteImage DELETE /api/admin/images with {"url": "..."}.
func (ac *AdminController) DeleteImage(c *ctx.Context) {
	var in struct {
		URL string `json:"url" validate:"required,url"`
	}
	if !c.BindJSON(&in) {
		return
	}
	if err := ac.images.Delete(c.Context(), in.URL); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// optionalID reads {id} when the route has one; POST routes have none.
func optionalID(c *ctx.Context) (uint, bool) {
	if c.Param("id") == "" {
		return 0, true
	}
	return c.ParamUint("id")
}

func saved(c *ctx.Context, id uint, v any) {
	if id == 0 {
		c.Created(v)
		return
	}
	c.Success(v)
}
