package grpc

import (
	"context"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"google.golang.org/grpc"
)

const (
	ProductServiceName        = "onlinestore.catalog.v1.ProductService"
	GetProductsInfoFullMethod = "/" + ProductServiceName + "/GetProductsInfo"
)

type ProductsInfoRequest struct {
	IDs []int64 `json:"ids"`
}

type Product struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Price      string   `json:"price"`
	PriceCents int64    `json:"priceCents"`
	Stock      int      `json:"stock"`
	Images     []string `json:"images"`
	IsActive   bool     `json:"isActive"`
}

type ProductsInfoResponse struct {
	Products         []*Product `json:"products"`
	ProductsNotFound []int64    `json:"productsNotFound"`
}

// ProductServiceServer - пакетное чтение каталога для внутренних сервисов.
type ProductServiceServer interface {
	GetProductsInfo(ctx context.Context, req *ProductsInfoRequest) (*ProductsInfoResponse, error)
}

var productServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProductsInfo",
			Handler:    getProductsInfoHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/product_service",
}

func getProductsInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProductsInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).GetProductsInfo(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetProductsInfoFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).GetProductsInfo(ctx, req.(*ProductsInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type ProductService struct {
	prUC   usecase.ProductCatalog
	logger logger.Logger
}

func NewProductService(prUC usecase.ProductCatalog, logger logger.Logger) *ProductService {
	return &ProductService{prUC: prUC, logger: logger}
}

func (g *ProductService) GetProductsInfo(ctx context.Context, req *ProductsInfoRequest) (*ProductsInfoResponse, error) {
	const op = "grpc.GetProductsInfo"

	res, err := g.prUC.GetProductsInfo(ctx, usecase.NewGetProductsReq(req.IDs))
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	notFound := res.NotFoundProducts
	if notFound == nil {
		notFound = []int64{}
	}

	return &ProductsInfoResponse{
		Products:         toArrGRPCProduct(res.Products),
		ProductsNotFound: notFound,
	}, nil
}

func toGRPCProduct(pr *domain.Product) *Product {
	return &Product{
		ID:         pr.ID,
		Name:       pr.Name,
		Category:   pr.Category,
		Price:      domain.CentsToDecimal(pr.Price).StringFixed(2),
		PriceCents: pr.Price,
		Stock:      pr.Stock,
		Images:     pr.Images,
		IsActive:   pr.IsActive,
	}
}

func toArrGRPCProduct(prs []domain.Product) []*Product {
	res := make([]*Product, len(prs))
	for i := range prs {
		res[i] = toGRPCProduct(&prs[i])
	}
	return res
}
